// Package repository contains data access for the local store: the event
// mirror maintained by the catalog resync, user accounts, and the durable
// sale records with their seats.  Sentinel errors defined here let higher
// layers distinguish failure scenarios with errors.Is without depending
// on database/sql internals.
package repository

import "errors"

// ErrEventNotFound indicates that no event row matched the lookup.
var ErrEventNotFound = errors.New("event not found")

// ErrUserNotFound indicates that no user row matched the lookup.
var ErrUserNotFound = errors.New("user not found")

// ErrSaleNotFound indicates that no sale row matched the lookup.
var ErrSaleNotFound = errors.New("sale not found")
