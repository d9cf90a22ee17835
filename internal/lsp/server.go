package lsp

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"sync"

	charmlog "github.com/charmbracelet/log"
	"go.bug.st/lsp"

	"github.com/rumdl-go/rumdl/pkg/config"
	"github.com/rumdl-go/rumdl/pkg/lint"
	goldmarkparser "github.com/rumdl-go/rumdl/pkg/parser/goldmark"
)

// document tracks the last-known state of one open text document.
type document struct {
	version int
	content []byte
}

// Server runs a single-threaded JSON-RPC loop over stdio, rebuilding the
// document model and republishing diagnostics on every change.
type Server struct {
	in    *bufio.Reader
	out   io.Writer
	outMu sync.Mutex

	logger *charmlog.Logger
	engine *lint.Engine
	cfg    *config.Config

	docMu sync.Mutex
	docs  map[string]*document
}

// NewServer creates a Server reading requests from in and writing
// responses/notifications to out.
func NewServer(in io.Reader, out io.Writer, cfg *config.Config, logger *charmlog.Logger) *Server {
	parser := goldmarkparser.New(string(cfg.Flavor))
	return &Server{
		in:     bufio.NewReader(in),
		out:    out,
		logger: logger,
		engine: lint.NewEngine(parser, lint.DefaultRegistry),
		cfg:    cfg,
		docs:   make(map[string]*document),
	}
}

// Run reads and dispatches messages until the transport closes, the
// context is cancelled, or an "exit" notification is received.
func (s *Server) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		body, err := s.readMessage()
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return fmt.Errorf("read message: %w", err)
		}

		var req rpcRequest
		if err := json.Unmarshal(body, &req); err != nil {
			s.logger.Warn("malformed LSP message", "error", err)
			continue
		}
		s.dispatch(ctx, &req)
	}
}

func (s *Server) dispatch(ctx context.Context, req *rpcRequest) {
	switch req.Method {
	case "initialize":
		s.reply(req.ID, map[string]any{
			"capabilities": map[string]any{
				"textDocumentSync":   1, // full document sync
				"codeActionProvider": true,
			},
		}, nil)

	case "initialized", "$/cancelRequest":
		// Notifications this server doesn't need to act on.

	case "textDocument/didOpen":
		var p didOpenParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.logger.Warn("didOpen: bad params", "error", err)
			return
		}
		s.openDocument(ctx, p.TextDocument.URI, p.TextDocument.Version, []byte(p.TextDocument.Text))

	case "textDocument/didChange":
		var p didChangeParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.logger.Warn("didChange: bad params", "error", err)
			return
		}
		if len(p.ContentChanges) == 0 {
			return
		}
		// Full-document sync: the last change event carries the whole text.
		latest := p.ContentChanges[len(p.ContentChanges)-1]
		s.openDocument(ctx, p.TextDocument.URI, p.TextDocument.Version, []byte(latest.Text))

	case "textDocument/didClose":
		var p didCloseParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			return
		}
		s.docMu.Lock()
		delete(s.docs, p.TextDocument.URI)
		s.docMu.Unlock()

	case "textDocument/codeAction":
		var p codeActionParams
		if err := json.Unmarshal(req.Params, &p); err != nil {
			s.reply(req.ID, nil, fmt.Errorf("bad params: %w", err))
			return
		}
		s.reply(req.ID, s.codeActions(ctx, &p), nil)

	case "shutdown":
		s.reply(req.ID, nil, nil)

	case "exit":
		os.Exit(0)

	default:
		if len(req.ID) > 0 {
			s.reply(req.ID, nil, fmt.Errorf("method not found: %s", req.Method))
		}
	}
}

func (s *Server) openDocument(ctx context.Context, uri string, version int, content []byte) {
	s.docMu.Lock()
	s.docs[uri] = &document{version: version, content: content}
	s.docMu.Unlock()
	s.publish(ctx, uri, version, content)
}

// publish relints uri and sends a fresh publishDiagnostics notification,
// discarding the result if a newer version has superseded it in the
// meantime (see the cancellation policy in the concurrency model).
func (s *Server) publish(ctx context.Context, uri string, version int, content []byte) {
	result, err := s.engine.LintFile(ctx, uriToPath(uri), content, s.cfg)
	if err != nil {
		s.logger.Warn("lint failed", "uri", uri, "error", err)
		return
	}

	s.docMu.Lock()
	current, ok := s.docs[uri]
	stale := ok && current.version != version
	s.docMu.Unlock()
	if stale {
		return
	}

	_ = s.writeMessage(rpcNotification{
		JSONRPC: "2.0",
		Method:  "textDocument/publishDiagnostics",
		Params: publishDiagnosticsParams{
			URI:         uri,
			Version:     version,
			Diagnostics: ToDiagnostics(result.Diagnostics),
		},
	})
}

func (s *Server) codeActions(ctx context.Context, p *codeActionParams) []CodeAction {
	uri := p.TextDocument.URI

	s.docMu.Lock()
	doc, ok := s.docs[uri]
	s.docMu.Unlock()
	if !ok {
		return nil
	}

	result, err := s.engine.LintFile(ctx, uriToPath(uri), doc.content, s.cfg)
	if err != nil {
		s.logger.Warn("lint failed during codeAction", "uri", uri, "error", err)
		return nil
	}

	var actions []CodeAction
	for i := range result.Diagnostics {
		d := &result.Diagnostics[i]
		if !rangesOverlap(ToRange(d), p.Range) {
			continue
		}
		actions = append(actions, CodeActionsForDiagnostic(result.Snapshot, uri, d)...)
	}
	return actions
}

func rangesOverlap(a, b lsp.Range) bool {
	if before(a.End, b.Start) {
		return false
	}
	if before(b.End, a.Start) {
		return false
	}
	return true
}

func before(a, b lsp.Position) bool {
	if a.Line != b.Line {
		return a.Line < b.Line
	}
	return a.Character < b.Character
}

func uriToPath(uri string) string {
	return strings.TrimPrefix(uri, "file://")
}

func (s *Server) reply(id json.RawMessage, result any, err error) {
	if len(id) == 0 {
		return
	}
	resp := rpcResponse{JSONRPC: "2.0", ID: id}
	if err != nil {
		resp.Error = &rpcError{Code: -32603, Message: err.Error()}
	} else {
		resp.Result = result
	}
	if werr := s.writeMessage(resp); werr != nil {
		s.logger.Error("write LSP response failed", "error", werr)
	}
}

// readMessage reads one Content-Length-framed JSON-RPC message.
func (s *Server) readMessage() ([]byte, error) {
	contentLength := -1
	for {
		line, err := s.in.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if name, value, found := strings.Cut(line, ":"); found && strings.EqualFold(strings.TrimSpace(name), "Content-Length") {
			n, err := strconv.Atoi(strings.TrimSpace(value))
			if err != nil {
				return nil, fmt.Errorf("parse Content-Length: %w", err)
			}
			contentLength = n
		}
	}
	if contentLength < 0 {
		return nil, fmt.Errorf("message missing Content-Length header")
	}

	body := make([]byte, contentLength)
	if _, err := io.ReadFull(s.in, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *Server) writeMessage(v any) error {
	body, err := json.Marshal(v)
	if err != nil {
		return err
	}

	s.outMu.Lock()
	defer s.outMu.Unlock()
	if _, err := fmt.Fprintf(s.out, "Content-Length: %d\r\n\r\n", len(body)); err != nil {
		return err
	}
	_, err = s.out.Write(body)
	return err
}
