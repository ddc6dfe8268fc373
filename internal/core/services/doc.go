// Package services implements the driving port interfaces.
// Services contain the core business logic and orchestrate
// calls to driven ports (adapters).
//
// Services log through internal/logger; driven adapters never log.
// Batch stages report per-document failures on their run reports
// instead of aborting.
package services
