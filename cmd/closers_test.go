package main

import (
	"errors"
	"testing"
)

func TestClosersRunInReverseAndContinuePastErrors(t *testing.T) {
	var order []string
	var c closers
	c.add("mongo", func() error { order = append(order, "mongo"); return nil })
	c.add("rabbitmq", func() error { order = append(order, "rabbitmq"); return errors.New("already closed") })
	c.add("forwarder", func() error { order = append(order, "forwarder"); return nil })

	c.closeAll()
	c.closeAll()

	want := []string{"forwarder", "rabbitmq", "mongo"}
	if len(order) != len(want) {
		t.Fatalf("closed %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("closed %v, want %v", order, want)
		}
	}
}
