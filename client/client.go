// Package client implements the correlation-id multiplexed SMP client:
// outbound commands are signed, framed, and registered under a fresh
// correlation id; an inbound loop parses broker transmissions, routes
// responses to the waiting caller, and fans unsolicited MSG/END pushes
// out to an application-visible queue, via a single-goroutine
// request/response loop retargeted onto SMP's corrId multiplexer.
package client

import (
	"context"
	"fmt"
	"strconv"
	"sync"

	"github.com/charmbracelet/log"

	"github.com/simplex-chat/smp-go/config"
	"github.com/simplex-chat/smp-go/crypto"
	"github.com/simplex-chat/smp-go/internal/worker"
	"github.com/simplex-chat/smp-go/queue"
	"github.com/simplex-chat/smp-go/transport"
	"github.com/simplex-chat/smp-go/wire"
)

// ServerMessage is one MSG/END broker push delivered to the application
// queue.
type ServerMessage struct {
	Server  config.SMPServer
	QueueID []byte
	Command wire.BrokerCommand
}

// ResponseError is returned to a caller of sendSMPCommand when the broker
// rejects or the connection closes before a response arrives.
type ResponseError struct {
	Err error
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("smp/client: %v", e.Err)
}

func (e *ResponseError) Unwrap() error { return e.Err }

func newResponseError(f string, a ...interface{}) error {
	return &ResponseError{Err: fmt.Errorf(f, a...)}
}

// ErrNotConnected is returned by outbound operations once the inbound
// loop has observed the transport close.
var ErrNotConnected = fmt.Errorf("smp/client: not connected")

// pendingRequest is a request in flight: the queue id a command was sent
// against, and the channel its eventual response is delivered on.
type pendingRequest struct {
	queueID []byte
	resultC chan responseResult
}

type responseResult struct {
	cmd     wire.BrokerCommand
	queueID []byte
	err     error
}

// Client is one handshaken connection to an SMP broker, multiplexing
// concurrent sendSMPCommand calls by correlation id.
type Client struct {
	worker.Worker

	th     *transport.THandle
	server config.SMPServer
	msgQ   *queue.Bounded[ServerMessage]
	log    *log.Logger
	m      *Metrics

	mu           sync.Mutex
	sentCommands map[string]*pendingRequest
	clientCorrID uint64
	connected    bool

	// writeMu serializes the WriteBlock call across concurrent
	// sendSMPCommand callers. th's send session key advances its IV
	// counter on every WriteBlock call; two overlapping writes would
	// derive and encrypt under the same IV, a fatal protocol violation.
	writeMu sync.Mutex
}

// New wraps a handshaken THandle as a multiplexed client. msgQ receives
// MSG/END pushes; logger may be nil.
func New(th *transport.THandle, server config.SMPServer, msgQ *queue.Bounded[ServerMessage], logger *log.Logger, m *Metrics) *Client {
	if logger == nil {
		logger = log.Default()
	}
	c := &Client{
		th:           th,
		server:       server,
		msgQ:         msgQ,
		log:          logger,
		m:            m,
		sentCommands: make(map[string]*pendingRequest),
		connected:    true,
	}
	c.Go(c.inboundLoop)
	return c
}

// Connected reports whether the inbound loop is still running.
func (c *Client) Connected() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.connected
}

// Disconnect closes the transport and waits for the inbound loop to
// finish, which rejects every still-pending request.
func (c *Client) Disconnect() {
	c.th.Close()
	c.Halt()
}

// sendSMPCommand allocates a correlation id, signs and frames cmd, writes
// it, and blocks until the matching response arrives or ctx is done.
func (c *Client) sendSMPCommand(ctx context.Context, signKey *crypto.GuardedKey, queueID []byte, cmd wire.ClientCommand) (wire.BrokerCommand, error) {
	c.mu.Lock()
	if !c.connected {
		c.mu.Unlock()
		return nil, ErrNotConnected
	}
	corrID := strconv.FormatUint(c.clientCorrID, 10)
	c.clientCorrID++
	req := &pendingRequest{queueID: queueID, resultC: make(chan responseResult, 1)}
	c.sentCommands[corrID] = req
	c.mu.Unlock()

	trn := wire.Trn([]byte(corrID), queueID, cmd)
	var sig []byte
	var err error
	if signKey != nil {
		sig, err = signKey.Sign(trn)
		if err != nil {
			c.dropPending(corrID)
			return nil, newResponseError("sign transmission: %w", err)
		}
	}
	body := wire.EncodeTransmissionBody(sig, []byte(corrID), queueID, cmd)

	c.writeMu.Lock()
	err = c.th.WriteBlock(ctx, body)
	c.writeMu.Unlock()
	if err != nil {
		c.dropPending(corrID)
		return nil, newResponseError("write transmission: %w", err)
	}
	if c.m != nil {
		c.m.CommandsSent.Inc()
	}

	select {
	case res := <-req.resultC:
		if res.err != nil {
			if c.m != nil {
				c.m.CommandErrors.Inc()
			}
			return nil, res.err
		}
		return res.cmd, nil
	case <-ctx.Done():
		c.dropPending(corrID)
		return nil, ctx.Err()
	}
}

func (c *Client) dropPending(corrID string) {
	c.mu.Lock()
	delete(c.sentCommands, corrID)
	c.mu.Unlock()
}

// inboundLoop runs for the lifetime of the connection, parsing each
// decrypted block and routing it to a waiting request or to msgQ.
func (c *Client) inboundLoop() {
	defer c.finish()
	for {
		select {
		case <-c.HaltCh():
			return
		default:
		}
		block, err := c.th.ReadBlock(context.Background())
		if err != nil {
			return
		}
		c.handleBlock(block)
	}
}

func (c *Client) finish() {
	c.mu.Lock()
	c.connected = false
	pending := c.sentCommands
	c.sentCommands = make(map[string]*pendingRequest)
	c.mu.Unlock()

	for _, req := range pending {
		req.resultC <- responseResult{err: newResponseError("connection closed")}
	}
	c.msgQ.Close()
}

func (c *Client) handleBlock(block []byte) {
	frame, ok := wire.ParseTransmission(block)
	if !ok {
		c.route("", responseResult{err: wire.BadBlockError})
		return
	}
	cmd, kerr := classify(frame.Cmd)
	corrID := string(frame.CorrId)
	if kerr != nil {
		c.route(corrID, responseResult{err: &ResponseError{Err: *kerr}})
		return
	}
	queueErr := checkQueueIDDiscipline(frame.Cmd.Tag(), frame.QueueId)
	if queueErr != nil {
		c.route(corrID, responseResult{err: &ResponseError{Err: *queueErr}})
		return
	}
	if errCmd, ok := cmd.(wire.Err); ok {
		c.route(corrID, responseResult{err: &ResponseError{Err: errCmd.Error}})
		return
	}
	c.route(corrID, responseResult{cmd: cmd, queueID: frame.QueueId})
}

// classify rejects a parsed command that a broker is not allowed to send.
func classify(cmd wire.Command) (wire.BrokerCommand, *wire.SMPError) {
	bc, ok := cmd.(wire.BrokerCommand)
	if !ok {
		e := wire.Cmd(wire.SubProhibited)
		return nil, &e
	}
	return bc, nil
}

// checkQueueIDDiscipline enforces the queue-id rule: IDS and PONG must
// carry no queue id, everything else that reaches here must.
func checkQueueIDDiscipline(tag wire.CmdTag, queueID []byte) *wire.SMPError {
	if tag == wire.TagERR {
		return nil
	}
	switch tag {
	case wire.TagIDS, wire.TagPONG:
		if len(queueID) != 0 {
			e := wire.Cmd(wire.SubHasAuth)
			return &e
		}
	default:
		if len(queueID) == 0 {
			e := wire.Cmd(wire.SubNoQueue)
			return &e
		}
	}
	return nil
}

// route delivers a classified inbound result to its matching pending
// request, or -- on a miss -- to msgQ if it's an unsolicited MSG/END.
func (c *Client) route(corrID string, res responseResult) {
	c.mu.Lock()
	req, hit := c.sentCommands[corrID]
	if hit {
		delete(c.sentCommands, corrID)
	}
	c.mu.Unlock()

	if hit {
		req.resultC <- res
		return
	}
	if res.err != nil {
		return
	}
	switch res.cmd.Tag() {
	case wire.TagMSG, wire.TagEND:
		_ = c.msgQ.Enqueue(ServerMessage{Server: c.server, QueueID: res.queueID, Command: res.cmd})
	default:
		if c.log != nil {
			c.log.Debug("dropped unsolicited command", "tag", res.cmd.Tag())
		}
	}
}
