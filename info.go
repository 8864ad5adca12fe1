package main

import (
	"fmt"
	"io"
	"text/tabwriter"

	"k4edit/k4"
)

func (a *app) info(args []string) error {
	fs := a.flags("info")
	if err := a.parse(fs, args, 1, "<file>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}

	fmt.Fprintf(a.out, "file: %s (%s)\n", doc.Path, doc.Format)
	if s := doc.Stream; s.Header != nil {
		fmt.Fprintf(a.out, "midi: format %d, %d tracks, division %d\n", s.Header.Format, s.Header.Tracks, s.Header.Division)
		if s.Tempo != nil {
			fmt.Fprintf(a.out, "tempo: %.1f bpm\n", s.Tempo.BPM())
		}
		if ts := s.TimeSignature; ts != nil {
			fmt.Fprintf(a.out, "time signature: %d/%d\n", ts.Numerator, 1<<ts.Denominator)
		}
		if s.HasChannelPrefix {
			fmt.Fprintf(a.out, "channel prefix: %d\n", s.ChannelPrefix)
		}
		for _, t := range s.Texts {
			fmt.Fprintf(a.out, "text: %q\n", t.Text)
		}
	}

	h := doc.Header
	fmt.Fprintf(a.out, "header: % X\n", h.Bytes())
	fmt.Fprintf(a.out, "channel: %d\n", h.Channel&0x0F+1)
	if !doc.IsFull() {
		fmt.Fprintf(a.out, "function 0x%02X is not a full dump\n", h.Function)
		return nil
	}

	w := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "KIND\tINDEX\tSLOT\tNAME\tCHECKSUM")
	for _, k := range k4.Kinds {
		for i := 0; i < doc.Len(k); i++ {
			r, _ := doc.Record(k, i)
			sum := "ok"
			if !r.Verify() {
				sum = "BAD"
			}
			fmt.Fprintf(w, "%s\t%d\t%s\t%s\t%s\n", k, i, k.SlotName(i), r.Name(), sum)
		}
	}
	if err := w.Flush(); err != nil {
		return err
	}

	for _, warn := range doc.Warnings {
		fmt.Fprintf(a.out, "warning: %v\n", warn)
	}
	return nil
}

func (a *app) verify(args []string) error {
	fs := a.flags("verify")
	if err := a.parse(fs, args, 1, "<file>"); err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}

	bad := doc.Verify()
	for _, err := range bad {
		fmt.Fprintln(a.out, err)
	}
	if len(bad) > 0 {
		return fmt.Errorf("%w: %d of %d", errInvalid, len(bad), len(doc.Records()))
	}
	fmt.Fprintf(a.out, "all %d records valid\n", len(doc.Records()))
	return nil
}

func (a *app) convert(args []string) error {
	fs := a.flags("convert")
	if err := a.parse(fs, args, 2, "<in> <out>"); err != nil {
		return err
	}
	f, err := k4.FormatFromPath(fs.Arg(1))
	if err != nil {
		return err
	}
	doc, err := a.open(fs.Arg(0))
	if err != nil {
		return err
	}
	return a.saveAs(doc, fs.Arg(1), f)
}

func (a *app) newDump(args []string) error {
	fs := a.flags("new")
	channel := fs.Int("channel", 0, "MIDI channel 1-16 (default from config)")
	if err := a.parse(fs, args, 1, "[-channel n] <out>"); err != nil {
		return err
	}
	ch := a.cfg.Channel
	if *channel != 0 {
		ch = *channel
	}
	if ch < 1 || ch > 16 {
		return fmt.Errorf("channel must be 1-16, got %d", ch)
	}

	doc := &k4.Document{Dump: k4.NewDump(ch)}
	return a.save(doc, fs.Arg(0))
}

func (a *app) fields(args []string) error {
	fs := a.flags("fields")
	if err := a.parse(fs, args, 1, "<kind>"); err != nil {
		return err
	}
	k, err := k4.ParseKind(fs.Arg(0))
	if err != nil {
		return err
	}
	return writeFields(a.out, k)
}

// writeFields prints the field table of kind k.
func writeFields(out io.Writer, k k4.Kind) error {
	fields, err := k4.LayoutFields(k)
	if err != nil {
		return err
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "# %s: %d bytes, %d per full dump\n", k, k.Size(), k.Count())
	fmt.Fprintln(w, "FIELD\tBYTE\tBITS\tMIN\tMAX")
	for _, f := range fields {
		fmt.Fprintf(w, "%s\t%d\t%s\t%d\t%d\n", f.Name, f.Offset, bits(f), f.Min(), f.Max())
	}
	return w.Flush()
}

// bits describes where a field sits inside its byte.
func bits(f k4.Field) string {
	if f.Split {
		return fmt.Sprintf("0-6, bit 7 at byte %d", f.HiOffset)
	}
	width := 0
	for m := f.Mask; m != 0; m >>= 1 {
		width++
	}
	if width == 1 {
		return fmt.Sprint(f.Shift)
	}
	return fmt.Sprintf("%d-%d", f.Shift, int(f.Shift)+width-1)
}
