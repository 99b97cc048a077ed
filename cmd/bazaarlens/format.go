package main

import (
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens"
	"github.com/bazaarlens/bazaarlens-go/pkg/bazaarlens/catalog"
)

// ValidFormats lists all valid output formats.
var ValidFormats = map[string]bool{
	"jsonl":  true,
	"pretty": true,
}

// OutputSnapshot writes a snapshot in the specified format to the writer.
func OutputSnapshot(format string, snap bazaarlens.Snapshot, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(snap, out)
	case "pretty":
		return OutputPretty(snap, out)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputJSON writes v as one line of JSON.
func OutputJSON(v any, out io.Writer) error {
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// OutputPretty writes a snapshot in human-readable format.
func OutputPretty(snap bazaarlens.Snapshot, out io.Writer) error {
	var sb strings.Builder
	writeItems(&sb, "hand", snap.Hand)
	writeItems(&sb, "stash", snap.Stash)
	if len(snap.Encounter) > 0 {
		names := make([]string, len(snap.Encounter))
		for i, m := range snap.Encounter {
			names[i] = monsterLabel(m)
		}
		fmt.Fprintf(&sb, "vs    %s\n", strings.Join(names, ", "))
	}
	sb.WriteString("--\n")

	_, err := io.WriteString(out, sb.String())
	return err
}

func writeItems(sb *strings.Builder, label string, items []catalog.Item) {
	fmt.Fprintf(sb, "%-5s (%d)", label, len(items))
	for _, it := range items {
		sb.WriteString(" ")
		sb.WriteString(itemLabel(it))
	}
	sb.WriteString("\n")
}

func itemLabel(it catalog.Item) string {
	if it.NameZh == "" {
		return it.ID
	}
	return quoteIfNeeded(it.NameZh)
}

func monsterLabel(m catalog.Monster) string {
	switch {
	case m.Name != "":
		return m.Name
	case m.NameZh != "":
		return m.NameZh
	}
	return m.ID
}

// OutputMonsters writes search results in the specified format.
func OutputMonsters(format string, monsters []catalog.Monster, out io.Writer) error {
	switch format {
	case "jsonl":
		for _, m := range monsters {
			if err := OutputJSON(m, out); err != nil {
				return err
			}
		}
		return nil
	case "pretty":
		if len(monsters) == 0 {
			_, err := fmt.Fprintln(out, "no matches")
			return err
		}
		for _, m := range monsters {
			if _, err := fmt.Fprintf(out, "%s  %s / %s  (%d skills, %d items)\n",
				m.ID, m.Name, m.NameZh, len(m.Skills), len(m.Items)); err != nil {
				return err
			}
		}
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// OutputEvent writes a parsed log event in the specified format.
func OutputEvent(format string, ev bazaarlens.Event, out io.Writer) error {
	switch format {
	case "jsonl":
		return OutputJSON(ev, out)
	case "pretty":
		data := map[string]string{}
		for k, v := range map[string]string{
			"iid":    ev.InstanceID,
			"tid":    ev.TemplateID,
			"target": ev.Target,
			"value":  ev.Value,
			"socket": ev.Socket,
		} {
			if v != "" {
				data[k] = v
			}
		}
		if len(ev.IDs) > 0 {
			data["ids"] = strings.Join(ev.IDs, ",")
		}

		var err error
		if len(data) > 0 {
			_, err = fmt.Fprintf(out, "* %s: %s\n", ev.Kind, formatData(data))
		} else {
			_, err = fmt.Fprintf(out, "* %s\n", ev.Kind)
		}
		return err
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}

// formatData formats a map as sorted key=value pairs.
func formatData(data map[string]string) string {
	if len(data) == 0 {
		return ""
	}

	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(data))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s=%s", quoteIfNeeded(k), quoteIfNeeded(data[k])))
	}
	return strings.Join(parts, " ")
}

// quoteIfNeeded quotes a value if it contains spaces, equals signs, quotes,
// backslashes or control characters.
func quoteIfNeeded(v string) string {
	if v == "" {
		return `""`
	}

	needsQuote := false
	for _, c := range v {
		if c == ' ' || c == '=' || c == '"' || c == '\\' || c < 0x20 || c == 0x7F {
			needsQuote = true
			break
		}
	}
	if !needsQuote {
		return v
	}

	var sb strings.Builder
	sb.WriteByte('"')
	for _, c := range v {
		switch {
		case c == '\\':
			sb.WriteString(`\\`)
		case c == '"':
			sb.WriteString(`\"`)
		case c == '\n':
			sb.WriteString(`\n`)
		case c == '\r':
			sb.WriteString(`\r`)
		case c == '\t':
			sb.WriteString(`\t`)
		case c < 0x20 || c == 0x7F:
			sb.WriteString(fmt.Sprintf(`\x%02x`, c))
		default:
			sb.WriteRune(c)
		}
	}
	sb.WriteByte('"')
	return sb.String()
}
