package domain

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// FactTable maps dotted key paths (e.g. "contacts.secretariat.email") to
// scalar string values. It is built once at load time by flattening all
// structured source files; later-loaded files merge recursively over earlier
// ones.
type FactTable map[string]string

// Get returns the value for a dotted path, or "" if absent.
func (t FactTable) Get(path string) string {
	return t[path]
}

// Has reports whether any fact exists at or below the given path.
func (t FactTable) Has(path string) bool {
	if _, ok := t[path]; ok {
		return true
	}
	prefix := path + "."
	for key := range t {
		if strings.HasPrefix(key, prefix) {
			return true
		}
	}
	return false
}

// Record returns all facts nested under prefix, keyed by the remainder of
// their path. Record("contacts.secretariat") on a table containing
// "contacts.secretariat.email" yields {"email": ...}.
func (t FactTable) Record(prefix string) map[string]string {
	record := make(map[string]string)
	p := prefix + "."
	for key, value := range t {
		if strings.HasPrefix(key, p) {
			record[strings.TrimPrefix(key, p)] = value
		}
	}
	return record
}

// Lines renders the table as sorted "path: value" lines, one per fact. This
// is how structured files contribute to a document's indexable content.
func (t FactTable) Lines() string {
	keys := make([]string, 0, len(t))
	for key := range t {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	var b strings.Builder
	for i, key := range keys {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(key)
		b.WriteString(": ")
		b.WriteString(t[key])
	}
	return b.String()
}

// MergeTree recursively merges src into dst (later values win). Both trees
// hold the result of unmarshalling JSON: nested map[string]any nodes with
// scalar leaves.
func MergeTree(dst, src map[string]any) map[string]any {
	if dst == nil {
		dst = make(map[string]any)
	}
	for key, value := range src {
		srcChild, srcIsMap := value.(map[string]any)
		dstChild, dstIsMap := dst[key].(map[string]any)
		if srcIsMap && dstIsMap {
			dst[key] = MergeTree(dstChild, srcChild)
			continue
		}
		dst[key] = value
	}
	return dst
}

// FlattenTree flattens a nested JSON-like tree into a FactTable of dotted
// paths. Scalars become trimmed string values; arrays are indexed numerically.
func FlattenTree(tree map[string]any) FactTable {
	table := make(FactTable)
	flattenInto(table, "", tree)
	return table
}

func flattenInto(table FactTable, prefix string, node any) {
	switch v := node.(type) {
	case map[string]any:
		for key, child := range v {
			flattenInto(table, joinPath(prefix, key), child)
		}
	case []any:
		for i, child := range v {
			flattenInto(table, joinPath(prefix, strconv.Itoa(i)), child)
		}
	case nil:
		table[prefix] = ""
	case bool:
		table[prefix] = strconv.FormatBool(v)
	case string:
		table[prefix] = strings.TrimSpace(v)
	case float64:
		table[prefix] = strings.TrimSpace(strconv.FormatFloat(v, 'f', -1, 64))
	default:
		table[prefix] = strings.TrimSpace(fmt.Sprint(v))
	}
}

func joinPath(prefix, key string) string {
	if prefix == "" {
		return key
	}
	return prefix + "." + key
}
