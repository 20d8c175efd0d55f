// Package contracts registers the builtin header contracts with core.
// Import this package to ensure they are available from core.DefaultContracts.
package contracts

// This file exists to provide a single import point.
// Each contract file uses init() to register its contracts.
