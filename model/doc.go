// Package model defines stable boundary types for API layers.
//
// Ledger identity (series ids, version numbers, content ids) is unaffected
// by any projection. These structs are the only types intended for direct
// JSON/YAML serialization by consumers.
package model
