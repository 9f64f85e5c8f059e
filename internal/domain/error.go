package domain

import "errors"

var (
	// Common domain errors
	ErrNotFound           = errors.New("entity not found")
	ErrAlreadyExists      = errors.New("entity already exists")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidExecContext = errors.New("invalid executor context")

	// Match pool errors
	ErrNoActiveMatch     = errors.New("no active match")
	ErrActiveMatchExists = errors.New("a match is already open")
	ErrPoolFull          = errors.New("match pool is full")
	ErrAlreadyInPool     = errors.New("player already in pool")
	ErrNotInPool         = errors.New("player not in pool")
	ErrOnCooldown        = errors.New("player is on cooldown")
	ErrLockHeld          = errors.New("lock held by another worker")
)
