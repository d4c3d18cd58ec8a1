package main

import (
	"flag"
	"fmt"
	"net"
	"os"

	"google.golang.org/grpc"

	"github.com/gradevault/gradevault/storage"
	"github.com/gradevault/gradevault/storage/grpcblob"
	"github.com/gradevault/gradevault/storage/localfs"
)

func main() {
	fs := flag.NewFlagSet("gradevault-casd", flag.ExitOnError)
	listen := fs.String("listen", "127.0.0.1:7791", "listen address")
	backend := fs.String("backend", "localfs", "blob backend (localfs, memory)")
	root := fs.String("root", defaultRoot(), "localfs blob directory")

	_ = fs.Parse(os.Args[1:])

	blobs, err := openBackend(*backend, *root)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}

	lis, err := net.Listen("tcp", *listen)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	defer lis.Close()

	s := grpc.NewServer()
	grpcblob.RegisterBlobStoreServer(s, &grpcblob.Server{Blobs: blobs})

	fmt.Fprintf(os.Stderr, "gradevault-casd listening on %s (backend=%s)\n", lis.Addr().String(), *backend)
	if err := s.Serve(lis); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func openBackend(name, root string) (storage.BlobStore, error) {
	switch name {
	case "localfs":
		return localfs.New(root)
	case "memory":
		return storage.NewMemory(), nil
	default:
		return nil, fmt.Errorf("unknown backend %q", name)
	}
}

func defaultRoot() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "gradevault-blobs"
	}
	return home + "/.gradevault/blobs"
}
