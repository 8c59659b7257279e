// Package lsp implements a Language Server Protocol server for Silex.
package lsp

import (
	"context"
	"encoding/json"
	"path/filepath"
	"sync"

	"github.com/spf13/afero"
	"gitlab.com/tozd/go/errors"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex"
	"github.com/silex-lang/silex/analysis"
	"github.com/silex-lang/silex/env"
)

// ServerName is reported to clients in the initialize response.
const ServerName = "silex-lsp"

// Server implements the LSP Server interface for Silex.
type Server struct {
	client protocol.Client
	logger *zap.Logger

	fs        afero.Fs
	envLoader *env.Loader

	// Document state
	mu        sync.RWMutex
	documents map[protocol.DocumentURI]*Document

	// analyzer is replaced at initialize once the project config is known.
	analyzer *analysis.Analyzer
	tabSize  int
	options  InitializationOptions

	// Server state
	initialized   bool
	shutdown      bool
	workspaceRoot string
}

// Document represents an open document in the server.
type Document struct {
	URI      protocol.DocumentURI
	Version  int32
	Content  string
	Analysis *analysis.Result
}

// InitializationOptions are the client settings accepted in the initialize request.
// They take precedence over .silex.yaml.
type InitializationOptions struct {
	TabSize          int      `json:"tabSize,omitempty"`
	Environments     []string `json:"environments,omitempty"`
	ScopedNamespaces *bool    `json:"scopedNamespaces,omitempty"`
	LateDeclarations *bool    `json:"lateDeclarations,omitempty"`
	EmitUnmapped     *bool    `json:"emitUnmapped,omitempty"`
}

// ServerOption configures a Server.
type ServerOption func(*Server)

// WithFs sets the filesystem used to read config and environment files.
func WithFs(fs afero.Fs) ServerOption {
	return func(s *Server) {
		s.fs = fs
	}
}

// NewServer creates a new LSP server. Until initialize runs, documents are
// analyzed against the standard library with default options.
func NewServer(client protocol.Client, logger *zap.Logger, opts ...ServerOption) *Server {
	s := &Server{
		client:    client,
		logger:    logger,
		fs:        afero.NewOsFs(),
		documents: make(map[protocol.DocumentURI]*Document),
		tabSize:   silex.DefaultTabSize,
	}

	for _, opt := range opts {
		opt(s)
	}

	s.envLoader = env.NewLoader(s.fs)
	s.analyzer = analysis.NewAnalyzer(
		analysis.NewRegistry(env.MustDefault()),
		analysis.WithLogger(logger),
	)

	return s
}

// Initialize handles the initialize request.
func (s *Server) Initialize(_ context.Context, params *protocol.InitializeParams) (*protocol.InitializeResult, error) {
	s.logger.Info("Initialize", zap.Any("params", params))

	// Extract workspace root from params
	switch {
	case params.RootURI != "":
		s.workspaceRoot = URIToPath(params.RootURI)
	case params.RootPath != "":
		s.workspaceRoot = params.RootPath
	case len(params.WorkspaceFolders) > 0:
		s.workspaceRoot = URIToPath(protocol.DocumentURI(params.WorkspaceFolders[0].URI))
	}

	if s.workspaceRoot != "" {
		s.logger.Info("Workspace root", zap.String("root", s.workspaceRoot))
	}

	opts, err := decodeInitializationOptions(params.InitializationOptions)
	if err != nil {
		s.logger.Warn("Ignoring invalid initializationOptions", zap.Error(err))
	}

	s.options = opts

	err = s.configure(opts)
	if err != nil {
		// Keep serving with the standard library only.
		s.logger.Error("Failed to load project configuration", zap.Error(err))
	}

	return &protocol.InitializeResult{
		Capabilities: protocol.ServerCapabilities{
			// Full document sync - client sends entire content on change
			TextDocumentSync: &protocol.TextDocumentSyncOptions{
				OpenClose: true,
				Change:    protocol.TextDocumentSyncKindFull,
				Save: &protocol.SaveOptions{
					IncludeText: true,
				},
			},
			SemanticTokensProvider: &semanticTokensOptions{
				Legend: semanticTokensLegend(),
				Full:   true,
				Range:  true,
			},
			HoverProvider:             true,
			DocumentSymbolProvider:    true,
			DocumentHighlightProvider: true,
			FoldingRangeProvider:      true,
		},
		ServerInfo: &protocol.ServerInfo{
			Name:    ServerName,
			Version: "0.1.0",
		},
	}, nil
}

// configure loads the project config from the workspace root and rebuilds the analyzer.
func (s *Server) configure(opts InitializationOptions) error {
	var cfg *silex.Config

	if s.workspaceRoot != "" {
		loaded, err := silex.LoadConfig(s.fs, s.workspaceRoot)

		switch {
		case errors.Is(err, silex.ErrConfigNotFound):
		case err != nil:
			return err
		default:
			s.logger.Info("Loaded config", zap.Strings("environments", loaded.EnvironmentPaths()))
			cfg = loaded
		}
	}

	if cfg == nil {
		cfg = &silex.Config{}
	}

	merged := *cfg

	if opts.TabSize > 0 {
		merged.TabSize = opts.TabSize
	}

	if opts.ScopedNamespaces != nil {
		merged.ScopedNamespaces = *opts.ScopedNamespaces
	}

	if opts.LateDeclarations != nil {
		merged.LateDeclarations = *opts.LateDeclarations
	}

	if opts.EmitUnmapped != nil {
		merged.EmitUnmapped = *opts.EmitUnmapped
	}

	merged.Environments = append([]string(nil), cfg.EnvironmentPaths()...)

	for _, p := range opts.Environments {
		if !filepath.IsAbs(p) && s.workspaceRoot != "" {
			p = filepath.Join(s.workspaceRoot, p)
		}

		merged.Environments = append(merged.Environments, p)
	}

	analyzer, err := analysis.Configure(&merged, s.envLoader, analysis.WithLogger(s.logger))
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.analyzer = analyzer
	s.logger.Debug("Configured analyzer", zap.Int("functions", analyzer.Registry().Len()))
	s.tabSize = merged.TabSizeFor(filepath.Join(s.workspaceRoot, "main"+silex.SourceExt))

	return nil
}

func decodeInitializationOptions(raw any) (InitializationOptions, error) {
	var opts InitializationOptions

	if raw == nil {
		return opts, nil
	}

	data, err := json.Marshal(raw)
	if err != nil {
		return opts, errors.WithStack(err)
	}

	err = json.Unmarshal(data, &opts)
	if err != nil {
		return InitializationOptions{}, errors.WithStack(err)
	}

	return opts, nil
}

// Initialized handles the initialized notification.
func (s *Server) Initialized(ctx context.Context, _ *protocol.InitializedParams) error {
	s.logger.Info("Initialized")
	s.initialized = true

	err := s.client.LogMessage(ctx, &protocol.LogMessageParams{
		Type:    protocol.MessageTypeInfo,
		Message: "Silex Language Server initialized",
	})
	if err != nil {
		s.logger.Warn("Failed to send log message", zap.Error(err))
	}

	return nil
}

// Shutdown handles the shutdown request.
func (s *Server) Shutdown(_ context.Context) error {
	s.logger.Info("Shutdown")
	s.shutdown = true

	return nil
}

// Exit handles the exit notification.
func (s *Server) Exit(_ context.Context) error {
	s.logger.Info("Exit")

	return nil
}

// TabSize returns the tab size in effect for this session.
func (s *Server) TabSize() int {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.tabSize
}

// DidOpen handles textDocument/didOpen notifications.
func (s *Server) DidOpen(ctx context.Context, params *protocol.DidOpenTextDocumentParams) error {
	s.logger.Info("DidOpen", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc := &Document{
		URI:     params.TextDocument.URI,
		Version: params.TextDocument.Version,
		Content: params.TextDocument.Text,
	}

	s.documents[params.TextDocument.URI] = doc

	s.analyze(ctx, doc)
	s.publishDiagnostics(ctx, doc)

	return nil
}

// DidChange handles textDocument/didChange notifications.
func (s *Server) DidChange(ctx context.Context, params *protocol.DidChangeTextDocumentParams) error {
	s.logger.Info("DidChange",
		zap.String("uri", string(params.TextDocument.URI)),
		zap.Int32("version", params.TextDocument.Version))

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok {
		s.logger.Warn("DidChange for unknown document", zap.String("uri", string(params.TextDocument.URI)))

		return nil
	}

	// Full sync - take the last content change (should only be one with full sync)
	if len(params.ContentChanges) > 0 {
		doc.Content = params.ContentChanges[len(params.ContentChanges)-1].Text
		doc.Version = params.TextDocument.Version

		s.analyze(ctx, doc)
		s.publishDiagnostics(ctx, doc)
	}

	return nil
}

// DidClose handles textDocument/didClose notifications.
func (s *Server) DidClose(ctx context.Context, params *protocol.DidCloseTextDocumentParams) error {
	s.logger.Info("DidClose", zap.String("uri", string(params.TextDocument.URI)))

	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.documents, params.TextDocument.URI)

	// Clear diagnostics for closed document
	err := s.client.PublishDiagnostics(ctx, &protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	if err != nil {
		s.logger.Error("Failed to clear diagnostics", zap.Error(err))
	}

	return nil
}

// DidSave handles textDocument/didSave notifications.
// When the client includes the saved text it replaces the stored content.
func (s *Server) DidSave(ctx context.Context, params *protocol.DidSaveTextDocumentParams) error {
	s.logger.Info("DidSave", zap.String("uri", string(params.TextDocument.URI)))

	if params.Text == "" {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, ok := s.documents[params.TextDocument.URI]
	if !ok || doc.Content == params.Text {
		return nil
	}

	doc.Content = params.Text

	s.analyze(ctx, doc)
	s.publishDiagnostics(ctx, doc)

	return nil
}

// analyze runs a pass over doc and stores the result. The caller holds s.mu.
// A cancelled pass keeps the previous result.
func (s *Server) analyze(ctx context.Context, doc *Document) {
	result, err := s.analyzer.Analyze(ctx, URIToPath(doc.URI), []byte(doc.Content))
	if err != nil {
		s.logger.Warn("Analysis cancelled", zap.String("uri", string(doc.URI)), zap.Error(err))

		return
	}

	doc.Analysis = result
}

// getAnalysis returns the latest analysis of an open document. The result is
// read under the lock; results are never mutated once stored.
func (s *Server) getAnalysis(uri protocol.DocumentURI) (*analysis.Result, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	doc, ok := s.documents[uri]
	if !ok || doc.Analysis == nil {
		return nil, false
	}

	return doc.Analysis, true
}

// currentAnalyzer returns the analyzer in effect (read-locked).
func (s *Server) currentAnalyzer() *analysis.Analyzer {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.analyzer
}
