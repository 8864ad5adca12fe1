package main

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"sync"
	"text/tabwriter"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"k4edit/k4"
)

// session is the document the MCP tools work on.
type session struct {
	mu  sync.Mutex
	app *app
	doc *k4.Document
}

func (a *app) mcp(args []string) error {
	fs := a.flags("mcp")
	if err := a.parse(fs, args, 1, "<file>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}

	s := newMCPServer(&session{app: a, doc: doc})
	log.Println("Starting K4 MCP server...")
	return server.ServeStdio(s)
}

var (
	kindArg  = mcp.WithString("kind", mcp.Required(), mcp.Description("Record kind: single, multi, drumcommon, drum or effect."))
	indexArg = mcp.WithNumber("index", mcp.Required(), mcp.Description("0-based slot index (singles and multis 0-63, drums 0-60, effects 0-31)."))
)

func newMCPServer(sess *session) *server.MCPServer {
	s := server.NewMCPServer(
		"K4 MCP",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(mcp.NewTool("k4_describe-layout",
		mcp.WithDescription("Lists the fields of a K4 record kind with byte offset, bits and value range."),
		kindArg,
	), sess.describeLayout)

	s.AddTool(mcp.NewTool("k4_list",
		mcp.WithDescription("Lists the records of the open dump with slot names, patch names and checksum state."),
		mcp.WithString("kind", mcp.Description("Only list this kind.")),
	), sess.list)

	s.AddTool(mcp.NewTool("k4_get-record",
		mcp.WithDescription("Returns one record of the open dump as JSON."),
		kindArg,
		indexArg,
	), sess.getRecord)

	s.AddTool(mcp.NewTool("k4_set-field",
		mcp.WithDescription("Sets one field of a record. Use k4_describe-layout for field names and ranges."),
		kindArg,
		indexArg,
		mcp.WithString("field", mcp.Required(), mcp.Description("Field name, e.g. volume, s2.coarse or section4.level.")),
		mcp.WithNumber("value", mcp.Required(), mcp.Description("New value.")),
	), sess.setField)

	s.AddTool(mcp.NewTool("k4_set-name",
		mcp.WithDescription("Renames a single or multi record. Names are cut to 10 characters."),
		kindArg,
		indexArg,
		mcp.WithString("name", mcp.Required(), mcp.Description("New patch name.")),
	), sess.setName)

	s.AddTool(mcp.NewTool("k4_randomize",
		mcp.WithDescription("Sets the fields of a record to random values."),
		kindArg,
		indexArg,
		mcp.WithString("group", mcp.Description("Only this field or field group, e.g. s1, dcf2 or volume.")),
		mcp.WithNumber("seed", mcp.Description("Random seed; 0 picks one.")),
	), sess.randomize)

	s.AddTool(mcp.NewTool("k4_save",
		mcp.WithDescription("Writes the dump to disk. The extension (.mid or .syx) picks the container."),
		mcp.WithString("path", mcp.Description("Output path; defaults to the file that was opened.")),
	), sess.save)

	return s
}

func (s *session) record(request mcp.CallToolRequest) (*k4.Record, int, error) {
	kind, err := request.RequireString("kind")
	if err != nil {
		return nil, 0, err
	}
	index, err := request.RequireInt("index")
	if err != nil {
		return nil, 0, err
	}
	k, err := k4.ParseKind(kind)
	if err != nil {
		return nil, 0, err
	}
	r, err := s.doc.Record(k, index)
	if err != nil {
		return nil, 0, err
	}
	return r, index, nil
}

func (s *session) describeLayout(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling describe layout request.")

	kind, err := request.RequireString("kind")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	k, err := k4.ParseKind(kind)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var buf bytes.Buffer
	if err := writeFields(&buf, k); err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *session) list(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling list request.")

	kinds := k4.Kinds
	if kind := request.GetString("kind", ""); kind != "" {
		k, err := k4.ParseKind(kind)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		kinds = []k4.Kind{k}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	var buf bytes.Buffer
	w := tabwriter.NewWriter(&buf, 0, 0, 1, ' ', 0)
	for _, k := range kinds {
		for i := 0; i < s.doc.Len(k); i++ {
			r, _ := s.doc.Record(k, i)
			state := "ok"
			if !r.Verify() {
				state = "bad checksum"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", k, i, k.SlotName(i), r.Name(), state)
		}
	}
	w.Flush()
	return mcp.NewToolResultText(buf.String()), nil
}

func (s *session) getRecord(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling get record request.")

	s.mu.Lock()
	defer s.mu.Unlock()

	r, i, err := s.record(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	asJson, err := marshalRecord(r, i)
	if err != nil {
		return nil, err
	}
	return mcp.NewToolResultText(string(asJson)), nil
}

func (s *session) setField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	field, err := request.RequireString("field")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	value, err := request.RequireInt("value")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Println("[mcp] Setting field", field, "to", value)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, i, err := s.record(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := setField(r, field, value); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("%s %s: %s = %d", r.Kind(), r.Kind().SlotName(i), field, value)), nil
}

func (s *session) setName(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	name, err := request.RequireString("name")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	log.Println("[mcp] Renaming record to", name)

	s.mu.Lock()
	defer s.mu.Unlock()

	r, i, err := s.record(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if !r.HasName() {
		return mcp.NewToolResultError(fmt.Sprintf("%s records have no name", r.Kind())), nil
	}
	r.SetName(name)
	return mcp.NewToolResultText(fmt.Sprintf("%s %s renamed to %q", r.Kind(), r.Kind().SlotName(i), r.Name())), nil
}

func (s *session) randomize(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	log.Println("[mcp] Handling randomize request.")

	s.mu.Lock()
	defer s.mu.Unlock()

	r, i, err := s.record(request)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	group := request.GetString("group", "")
	n := randomizeRecord(r, int64(request.GetInt("seed", 0)), group)
	if n == 0 {
		return mcp.NewToolResultError(fmt.Sprintf("no %s field in group %q", r.Kind(), group)), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("randomized %d fields of %s %s", n, r.Kind(), r.Kind().SlotName(i))), nil
}

func (s *session) save(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path := request.GetString("path", s.doc.Path)
	log.Println("[mcp] Saving dump to", path)

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.app.save(s.doc, path); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText("Saved " + path), nil
}
