package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"strings"

	_ "embed"

	"github.com/xeipuuv/gojsonschema"

	"k4edit/k4"
)

//go:embed edit_schema.json
var editSchema []byte

var errBadScript = errors.New("invalid edit script")

// editScript is a batch of record edits. Each edit sets one field, renames
// the record, or copies another slot of the same kind over it.
type editScript struct {
	Edits []edit `json:"edits"`
}

type edit struct {
	Kind     string  `json:"kind"`
	Index    int     `json:"index"`
	Field    string  `json:"field,omitempty"`
	Value    *int    `json:"value,omitempty"`
	Name     *string `json:"name,omitempty"`
	CopyFrom *int    `json:"copy_from,omitempty"`
}

func parseEditScript(data []byte) (*editScript, error) {
	schema, err := gojsonschema.NewSchema(gojsonschema.NewBytesLoader(editSchema))
	if err != nil {
		return nil, fmt.Errorf("failed to compile edit schema: %w", err)
	}
	result, err := schema.Validate(gojsonschema.NewBytesLoader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", errBadScript, err)
	}
	if !result.Valid() {
		msgs := make([]string, 0, len(result.Errors()))
		for _, e := range result.Errors() {
			msgs = append(msgs, e.String())
		}
		return nil, fmt.Errorf("%w: %s", errBadScript, strings.Join(msgs, "; "))
	}

	var s editScript
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("%w: %v", errBadScript, err)
	}
	return &s, nil
}

// apply runs every edit against d. If one fails the dump is restored to
// its previous bytes.
func (s *editScript) apply(d *k4.Dump) error {
	records := d.Records()
	saved := make([][]byte, len(records))
	for i, r := range records {
		saved[i] = r.Frame()
	}

	for n, e := range s.Edits {
		if err := e.apply(d); err != nil {
			for i, r := range records {
				r.ForceLoadFrame(saved[i])
			}
			return fmt.Errorf("edit #%d: %w", n, err)
		}
	}
	return nil
}

func (e edit) apply(d *k4.Dump) error {
	k, err := k4.ParseKind(e.Kind)
	if err != nil {
		return err
	}
	r, err := d.Record(k, e.Index)
	if err != nil {
		return err
	}

	switch {
	case e.Value != nil:
		return setField(r, e.Field, *e.Value)
	case e.Name != nil:
		if !r.HasName() {
			return fmt.Errorf("%s records have no name", k)
		}
		r.SetName(*e.Name)
		return nil
	case e.CopyFrom != nil:
		src, err := d.Record(k, *e.CopyFrom)
		if err != nil {
			return err
		}
		return r.Paste(src.Copy())
	}
	return errBadScript
}

func (a *app) apply(args []string) error {
	fs := a.flags("apply")
	out := fs.String("o", "", "output file (default: overwrite input)")
	if err := a.parse(fs, args, 2, "[-o out] <file> <edits.json>"); err != nil {
		return err
	}

	data, err := os.ReadFile(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("failed to read edit script: %w", err)
	}
	script, err := parseEditScript(data)
	if err != nil {
		return err
	}

	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	if err := script.apply(doc.Dump); err != nil {
		return err
	}
	log.Printf("applied %d edits", len(script.Edits))
	return a.save(doc, output(*out, fs.Arg(0)))
}
