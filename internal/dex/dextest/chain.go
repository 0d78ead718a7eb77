// Package dextest provides an in-memory contract caller for tests.
package dextest

import (
	"context"
	"fmt"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// Handler answers one decoded call. The returned values are packed with the method outputs.
type Handler func(msg ethereum.CallMsg, args []interface{}) ([]interface{}, error)

type contract struct {
	parsed   abi.ABI
	handlers map[string]Handler
}

// Chain dispatches eth_call requests to registered handlers by contract and method selector.
type Chain struct {
	mu        sync.Mutex
	contracts map[common.Address]*contract
	calls     []string
}

func NewChain() *Chain {
	return &Chain{contracts: make(map[common.Address]*contract)}
}

// Handle registers h for method on the contract at address.
func (c *Chain) Handle(address common.Address, parsed abi.ABI, method string, h Handler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	ct, ok := c.contracts[address]
	if !ok {
		ct = &contract{parsed: parsed, handlers: make(map[string]Handler)}
		c.contracts[address] = ct
	}
	ct.handlers[method] = h
}

// Returns registers a handler that always answers with values.
func (c *Chain) Returns(address common.Address, parsed abi.ABI, method string, values ...interface{}) {
	c.Handle(address, parsed, method, func(ethereum.CallMsg, []interface{}) ([]interface{}, error) {
		return values, nil
	})
}

// Calls returns the "address.method" log of served calls in order.
func (c *Chain) Calls() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]string(nil), c.calls...)
}

// CallContract implements dex.Caller.
func (c *Chain) CallContract(_ context.Context, msg ethereum.CallMsg, _ *big.Int) ([]byte, error) {
	if msg.To == nil {
		return nil, fmt.Errorf("missing call target")
	}
	if len(msg.Data) < 4 {
		return nil, fmt.Errorf("call data too short")
	}

	c.mu.Lock()
	ct, ok := c.contracts[*msg.To]
	c.mu.Unlock()
	if !ok {
		return nil, fmt.Errorf("execution reverted: no contract at %s", msg.To.Hex())
	}

	method, err := ct.parsed.MethodById(msg.Data[:4])
	if err != nil {
		return nil, err
	}
	h, ok := ct.handlers[method.Name]
	if !ok {
		return nil, fmt.Errorf("execution reverted: %s not handled", method.Name)
	}

	c.mu.Lock()
	c.calls = append(c.calls, msg.To.Hex()+"."+method.Name)
	c.mu.Unlock()

	args, err := method.Inputs.Unpack(msg.Data[4:])
	if err != nil {
		return nil, fmt.Errorf("unpack %s inputs: %w", method.Name, err)
	}
	out, err := h(msg, args)
	if err != nil {
		return nil, err
	}
	return method.Outputs.Pack(out...)
}
