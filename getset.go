package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"math/rand"
	"strconv"
	"time"

	"k4edit/k4"
)

// recordJSON is the JSON view of one record.
type recordJSON struct {
	Kind     string         `json:"kind"`
	Index    int            `json:"index"`
	Slot     string         `json:"slot"`
	Name     string         `json:"name,omitempty"`
	Checksum byte           `json:"checksum"`
	Valid    bool           `json:"valid"`
	Fields   map[string]int `json:"fields"`
}

func newRecordJSON(r *k4.Record, index int) recordJSON {
	return recordJSON{
		Kind:     r.Kind().String(),
		Index:    index,
		Slot:     r.Kind().SlotName(index),
		Name:     r.Name(),
		Checksum: r.Checksum(),
		Valid:    r.Verify(),
		Fields:   r.Values(),
	}
}

func marshalRecord(r *k4.Record, index int) ([]byte, error) {
	asJson, err := json.MarshalIndent(newRecordJSON(r, index), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal record to JSON: %w", err)
	}
	return asJson, nil
}

// setField stores value into the named field, rejecting values outside the
// field's range.
func setField(r *k4.Record, name string, value int) error {
	f, ok := r.Field(name)
	if !ok {
		return fmt.Errorf("%w: %s has no field %q", k4.ErrUnknownField, r.Kind(), name)
	}
	if value < f.Min() || value > f.Max() {
		return fmt.Errorf("%s must be %d..%d, got %d", name, f.Min(), f.Max(), value)
	}
	return r.Set(name, value)
}

func (a *app) get(args []string) error {
	fs := a.flags("get")
	if err := a.parse(fs, args, 3, "<file> <kind> <slot>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	r, i, err := a.record(doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	asJson, err := marshalRecord(r, i)
	if err != nil {
		return err
	}
	fmt.Fprintln(a.out, string(asJson))
	return nil
}

func (a *app) set(args []string) error {
	fs := a.flags("set")
	out := fs.String("o", "", "output file (default: overwrite input)")
	if err := a.parse(fs, args, 5, "[-o out] <file> <kind> <slot> <field> <value>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	r, _, err := a.record(doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	field, value := fs.Arg(3), fs.Arg(4)
	if field == "name" && r.HasName() {
		r.SetName(value)
	} else {
		v, err := strconv.Atoi(value)
		if err != nil {
			return fmt.Errorf("value of %s must be a number, got %q", field, value)
		}
		if err := setField(r, field, v); err != nil {
			return err
		}
	}
	return a.save(doc, output(*out, fs.Arg(0)))
}

func (a *app) randomize(args []string) error {
	fs := a.flags("randomize")
	out := fs.String("o", "", "output file (default: overwrite input)")
	seed := fs.Int64("seed", 0, "random seed (default: time based)")
	group := fs.String("group", "", "only this field or field group, e.g. s1, dcf2 or volume")
	if err := a.parse(fs, args, 3, "[-o out] [-seed n] [-group g] <file> <kind> <slot>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	r, _, err := a.record(doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	n := randomizeRecord(r, *seed, *group)
	if n == 0 {
		return fmt.Errorf("%w: no %s field in group %q", k4.ErrUnknownField, r.Kind(), *group)
	}
	log.Printf("randomized %d fields of %s", n, r.Kind())
	return a.save(doc, output(*out, fs.Arg(0)))
}

// randomizeRecord randomizes the selected fields and, when the whole record
// was randomized, gives it a random name.
func randomizeRecord(r *k4.Record, seed int64, group string) int {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	n := r.Randomize(rand.New(rand.NewSource(seed)), group)
	if group == "" && r.HasName() {
		r.SetName(k4.RandomName())
	}
	return n
}

func (a *app) export(args []string) error {
	fs := a.flags("export")
	if err := a.parse(fs, args, 4, "<file> <kind> <slot> <out>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	r, i, err := a.record(doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}
	if err := r.Save(fs.Arg(3)); err != nil {
		return err
	}
	log.Printf("exported %s %s to %s", r.Kind(), r.Kind().SlotName(i), fs.Arg(3))
	return nil
}

func (a *app) importRecord(args []string) error {
	fs := a.flags("import")
	out := fs.String("o", "", "output file (default: overwrite input)")
	force := fs.Bool("force", false, "keep the record even if its checksum is wrong")
	if err := a.parse(fs, args, 4, "[-o out] [-force] <file> <kind> <slot> <in>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	r, _, err := a.record(doc, fs.Arg(1), fs.Arg(2))
	if err != nil {
		return err
	}

	in := fs.Arg(3)
	if *force {
		err = r.ForceLoad(in)
		if errors.Is(err, k4.ErrChecksum) {
			log.Printf("warning: %s: %v", in, err)
			err = nil
		}
	} else {
		err = r.Load(in)
	}
	if err != nil {
		return fmt.Errorf("%s: %w", in, err)
	}
	return a.save(doc, output(*out, fs.Arg(0)))
}
