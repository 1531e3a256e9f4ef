//go:build !linux

package main

func lowerPriority(nice int) error {
	return nil
}
