package lsp

import (
	"context"
	"path/filepath"
	"slices"

	"go.lsp.dev/protocol"
	"go.uber.org/zap"

	"github.com/silex-lang/silex"
)

// DidChangeWatchedFiles reloads the project configuration when a config or
// environment file changes, then re-analyzes every open document.
func (s *Server) DidChangeWatchedFiles(ctx context.Context, params *protocol.DidChangeWatchedFilesParams) error {
	if !slices.ContainsFunc(params.Changes, affectsConfiguration) {
		return nil
	}

	s.logger.Info("Reloading configuration", zap.Int("changes", len(params.Changes)))

	s.envLoader.Clear()

	err := s.configure(s.options)
	if err != nil {
		s.logger.Error("Failed to reload project configuration", zap.Error(err))

		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, doc := range s.documents {
		s.analyze(ctx, doc)
		s.publishDiagnostics(ctx, doc)
	}

	return nil
}

func affectsConfiguration(ev *protocol.FileEvent) bool {
	if ev == nil {
		return false
	}

	path := URIToPath(ev.URI)

	if slices.Contains(silex.DefaultConfigNames, filepath.Base(path)) {
		return true
	}

	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return true
	}

	return false
}
