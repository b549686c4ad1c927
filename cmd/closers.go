package main

import "log"

type closer struct {
	name  string
	close func() error
}

// closers releases resources in reverse order of registration.
type closers []closer

func (c *closers) add(name string, fn func() error) {
	*c = append(*c, closer{name: name, close: fn})
}

func (c *closers) closeAll() {
	for i := len(*c) - 1; i >= 0; i-- {
		cl := (*c)[i]
		if err := cl.close(); err != nil {
			log.Printf("Error closing %s: %v", cl.name, err)
		}
	}
	*c = nil
}
