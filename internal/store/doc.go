// Package store provides abstractions for data persistence. It defines the
// interfaces the rest of the application programs against plus the shared
// error vocabulary; concrete implementations live under platform/postgres.
package store
