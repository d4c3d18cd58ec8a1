package cli

import (
	"crypto/rand"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/gradevault/gradevault/keys"
)

// NewKeyCommand groups key management subcommands.
func NewKeyCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "key",
		Short: "Manage identity keys and the public key registry",
	}
	cmd.AddCommand(newKeyInitCommand(rootOpts))
	cmd.AddCommand(newKeyListCommand(rootOpts))
	cmd.AddCommand(newKeyExportCommand(rootOpts))
	cmd.AddCommand(newKeyRegisterCommand(rootOpts))
	return cmd
}

func newKeyInitCommand(rootOpts *RootOptions) *cobra.Command {
	var overwrite bool
	var seedHex string

	cmd := &cobra.Command{
		Use:   "init <identity>",
		Short: "Create a keypair for an identity and register its public key",
		Long: "Create a keypair for an identity and register its public key.\n\n" +
			"The seed is stored under the key directory; the public key is added\n" +
			"to the registry so submissions can seal envelopes for this identity.",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runKeyInit(rootOpts, cmd, args[0], seedHex, overwrite)
		},
	}

	cmd.Flags().BoolVar(&overwrite, "overwrite", false, "replace an existing key")
	cmd.Flags().StringVar(&seedHex, "seed", "", "hex seed to derive from instead of generating")
	return cmd
}

func runKeyInit(rootOpts *RootOptions, cmd *cobra.Command, name, seedHex string, overwrite bool) error {
	cfg, err := LoadConfig(rootOpts.ConfigPath)
	if err != nil {
		return WrapExitError(ExitCommandError, "load config", err)
	}
	ks, err := openKeyStore(cfg)
	if err != nil {
		return WrapExitError(ExitCommandError, "open key store", err)
	}

	var seed []byte
	if seedHex != "" {
		seed, err = keys.ParseSeedHex(seedHex)
		if err != nil {
			return WrapExitError(ExitCommandError, "parse seed", err)
		}
	} else {
		seed = make([]byte, keys.Scheme().SeedSize())
		if _, err := rand.Read(seed); err != nil {
			return WrapExitError(ExitCommandError, "generate seed", err)
		}
	}

	publicKey, filePath, err := ks.Initialize(name, seed, overwrite)
	if err != nil {
		return WrapExitError(ExitFailure, "initialize key", err)
	}

	registry, err := LoadRegistry(cfg.Keys.Registry)
	if err != nil {
		return WrapExitError(ExitCommandError, "load registry", err)
	}
	registry[name] = publicKey
	if err := SaveRegistry(cfg.Keys.Registry, registry); err != nil {
		return WrapExitError(ExitCommandError, "save registry", err)
	}

	out := newFormatter(rootOpts, cmd.OutOrStdout())
	return out.Success(map[string]string{
		"identity":  name,
		"publicKey": publicKey,
		"keyFile":   filePath,
	})
}

func newKeyListCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "list",
		Short:         "List stored identities and their public keys",
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			ks, err := openKeyStore(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open key store", err)
			}
			entries, err := ks.List()
			if err != nil {
				return WrapExitError(ExitFailure, "list keys", err)
			}

			if rootOpts.Format == "json" {
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(entries)
			}
			for _, e := range entries {
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", e.Name, e.PublicKey)
			}
			return nil
		},
	}
}

func newKeyExportCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:           "export <identity>",
		Short:         "Print the public key for a stored identity",
		Args:          cobra.ExactArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			ks, err := openKeyStore(cfg)
			if err != nil {
				return WrapExitError(ExitCommandError, "open key store", err)
			}
			publicKey, err := ks.Export(args[0])
			if err != nil {
				return WrapExitError(ExitFailure, "export key", err)
			}

			if rootOpts.Format == "json" {
				return newFormatter(rootOpts, cmd.OutOrStdout()).Success(map[string]string{
					"identity":  args[0],
					"publicKey": publicKey,
				})
			}
			fmt.Fprintln(cmd.OutOrStdout(), publicKey)
			return nil
		},
	}
}

func newKeyRegisterCommand(rootOpts *RootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "register <identity> <public-key>",
		Short: "Add another party's public key to the registry",
		Long: "Add another party's public key to the registry.\n\n" +
			"Sealing an envelope needs the public keys of both the teacher and\n" +
			"the student; register counterparties here before submitting.",
		Args:          cobra.ExactArgs(2),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(rootOpts.ConfigPath)
			if err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if _, err := keys.ParsePublicKey(args[1]); err != nil {
				return WrapExitError(ExitCommandError, "parse public key", err)
			}
			registry, err := LoadRegistry(cfg.Keys.Registry)
			if err != nil {
				return WrapExitError(ExitCommandError, "load registry", err)
			}
			registry[args[0]] = args[1]
			if err := SaveRegistry(cfg.Keys.Registry, registry); err != nil {
				return WrapExitError(ExitCommandError, "save registry", err)
			}
			return newFormatter(rootOpts, cmd.OutOrStdout()).Success(map[string]string{
				"identity":  args[0],
				"publicKey": args[1],
			})
		},
	}
}
