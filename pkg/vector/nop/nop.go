// Package nop provides a no-op vector driver for deployments without a
// vector store.
package nop

import "context"

// Driver discards every deletion.
type Driver struct{}

// NewDriver creates a new no-op vector driver.
func NewDriver() *Driver {
	return &Driver{}
}

// Delete is a no-op.
func (d *Driver) Delete(_ context.Context, _ []string) error {
	return nil
}

// Close is a no-op.
func (d *Driver) Close() error {
	return nil
}
