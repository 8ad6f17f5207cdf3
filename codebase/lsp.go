package codebase

import (
	"net/url"
	"path/filepath"
	"strings"
	"unicode/utf16"

	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"github.com/dhamidi/giftlint/diagnose"
	"github.com/dhamidi/giftlint/gift/parser"
)

const lsName = "giftlint"

type LSPServer struct {
	codebase *Codebase
	checker  Checker
	handler  protocol.Handler
	server   *server.Server
	version  string
}

func NewLSPServer(version string, checker Checker) *LSPServer {
	ls := &LSPServer{
		version: version,
		checker: checker,
	}

	ls.handler = protocol.Handler{
		Initialize:             ls.initialize,
		Initialized:            ls.initialized,
		Shutdown:               ls.shutdown,
		SetTrace:               ls.setTrace,
		TextDocumentDidOpen:    ls.textDocumentDidOpen,
		TextDocumentDidChange:  ls.textDocumentDidChange,
		TextDocumentDidClose:   ls.textDocumentDidClose,
		TextDocumentDidSave:    ls.textDocumentDidSave,
		TextDocumentCompletion: ls.textDocumentCompletion,
	}

	ls.server = server.NewServer(&ls.handler, lsName, false)

	return ls
}

func (ls *LSPServer) RunStdio() error {
	return ls.server.RunStdio()
}

func (ls *LSPServer) initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	rootDir := "."
	if params.RootPath != nil && *params.RootPath != "" {
		rootDir = *params.RootPath
	} else if params.RootURI != nil && *params.RootURI != "" {
		if path, err := uriToPath(*params.RootURI); err == nil {
			rootDir = path
		}
	}

	ls.codebase = New(rootDir, ls.checker)

	capabilities := ls.handler.CreateServerCapabilities()

	capabilities.TextDocumentSync = &protocol.TextDocumentSyncOptions{
		OpenClose: boolPtr(true),
		Change:    intPtr(int(protocol.TextDocumentSyncKindFull)),
		Save: &protocol.SaveOptions{
			IncludeText: boolPtr(true),
		},
	}

	capabilities.CompletionProvider = &protocol.CompletionOptions{
		TriggerCharacters: []string{"["},
	}

	return protocol.InitializeResult{
		Capabilities: capabilities,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: &ls.version,
		},
	}, nil
}

// initialized checks the whole workspace so files with errors show up
// before they are opened.
func (ls *LSPServer) initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	if err := ls.codebase.ScanAll(); err != nil {
		log.Warningf("scanning workspace: %v", err)
	}
	for _, path := range ls.codebase.Files() {
		ls.publish(ctx, pathToURI(path), path)
	}
	return nil
}

func (ls *LSPServer) shutdown(ctx *glsp.Context) error {
	return nil
}

func (ls *LSPServer) setTrace(ctx *glsp.Context, params *protocol.SetTraceParams) error {
	protocol.SetTraceValue(params.Value)
	return nil
}

func (ls *LSPServer) textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	ls.codebase.UpdateFile(path, []byte(params.TextDocument.Text))
	ls.publish(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if len(params.ContentChanges) > 0 {
		change := params.ContentChanges[len(params.ContentChanges)-1]
		if textChange, ok := change.(protocol.TextDocumentContentChangeEventWhole); ok {
			ls.codebase.UpdateFile(path, []byte(textChange.Text))
			ls.publish(ctx, params.TextDocument.URI, path)
		}
	}
	return nil
}

func (ls *LSPServer) textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         params.TextDocument.URI,
		Diagnostics: []protocol.Diagnostic{},
	})
	return nil
}

func (ls *LSPServer) textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil
	}
	if params.Text != nil {
		ls.codebase.UpdateFile(path, []byte(*params.Text))
	} else {
		ls.codebase.ScanFile(path)
	}
	ls.publish(ctx, params.TextDocument.URI, path)
	return nil
}

func (ls *LSPServer) publish(ctx *glsp.Context, uri protocol.DocumentUri, path string) {
	file := ls.codebase.GetFile(path)
	if file == nil {
		return
	}
	if file.Err != nil {
		log.Errorf("checking %s: %v", path, file.Err)
	}
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, protocol.PublishDiagnosticsParams{
		URI:         uri,
		Diagnostics: toProtocolDiagnostics(file.Report),
	})
}

// textDocumentCompletion offers the format markers after an opening "[".
func (ls *LSPServer) textDocumentCompletion(ctx *glsp.Context, params *protocol.CompletionParams) (any, error) {
	path, err := uriToPath(params.TextDocument.URI)
	if err != nil {
		return nil, nil
	}

	file := ls.codebase.GetFile(path)
	if file == nil {
		return nil, nil
	}

	line := int(params.Position.Line) + 1
	col := int(params.Position.Character)
	if findTriggerPosition(file.Content, line, col) < 0 {
		return nil, nil
	}

	var items []protocol.CompletionItem
	for _, name := range parser.Formats() {
		kind := protocol.CompletionItemKindKeyword
		detail := "text format"
		insertText := name + "]"
		items = append(items, protocol.CompletionItem{
			Label:      name,
			Kind:       &kind,
			Detail:     &detail,
			InsertText: &insertText,
		})
	}
	return items, nil
}

// findTriggerPosition returns the byte index of the "[" directly before the
// zero-based UTF-16 column col on the given line, or -1.
func findTriggerPosition(content []byte, line, col int) int {
	lines := strings.Split(string(content), "\n")
	if line <= 0 || line > len(lines) {
		return -1
	}
	lineContent := strings.TrimSuffix(lines[line-1], "\r")

	i := byteIndex(lineContent, col) - 1
	if i >= 0 && i < len(lineContent) && lineContent[i] == '[' && (i == 0 || lineContent[i-1] != '\\') {
		return i
	}
	return -1
}

// byteIndex converts a zero-based UTF-16 column into a byte index of s.
// Columns past the end of s map to len(s).
func byteIndex(s string, character int) int {
	units := 0
	for i, r := range s {
		if units >= character {
			return i
		}
		units += len(utf16.Encode([]rune{r}))
	}
	return len(s)
}

func toProtocolDiagnostics(report diagnose.Report) []protocol.Diagnostic {
	lines := strings.Split(report.Source, "\n")
	severity := protocol.DiagnosticSeverityError
	source := lsName

	out := []protocol.Diagnostic{}
	for _, d := range report.Diagnostics {
		message := d.Message
		for _, note := range d.Notes {
			message += "\n" + note
		}
		out = append(out, protocol.Diagnostic{
			Range: protocol.Range{
				Start: toProtocolPosition(lines, d.Span.Start.Line, d.Span.Start.Column),
				End:   toProtocolPosition(lines, d.Span.End.Line, d.Span.End.Column),
			},
			Severity: &severity,
			Source:   &source,
			Message:  message,
		})
	}
	return out
}

// toProtocolPosition converts a 1-based rune column into the zero-based
// UTF-16 column editors count in.
func toProtocolPosition(lines []string, line, column int) protocol.Position {
	line, column = max(line-1, 0), max(column-1, 0)
	character := column
	if line < len(lines) {
		character = 0
		n := 0
		for _, r := range lines[line] {
			if n == column {
				break
			}
			character += len(utf16.Encode([]rune{r}))
			n++
		}
		character += column - n
	}
	return protocol.Position{
		Line:      protocol.UInteger(line),
		Character: protocol.UInteger(character),
	}
}

func uriToPath(uri string) (string, error) {
	if strings.HasPrefix(uri, "file://") {
		parsed, err := url.Parse(uri)
		if err != nil {
			return "", err
		}
		return filepath.Clean(parsed.Path), nil
	}
	return uri, nil
}

func pathToURI(path string) protocol.DocumentUri {
	abs, err := filepath.Abs(path)
	if err != nil {
		abs = path
	}
	return (&url.URL{Scheme: "file", Path: filepath.ToSlash(abs)}).String()
}

func boolPtr(b bool) *bool {
	return &b
}

func intPtr(i int) *protocol.TextDocumentSyncKind {
	v := protocol.TextDocumentSyncKind(i)
	return &v
}
