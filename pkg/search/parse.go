package search

import (
	"sort"
	"strconv"
	"strings"
	"time"
)

// Options configures the parser. Zero values fall back to the defaults of
// the server configuration.
type Options struct {
	DefaultSize int
	MaxSize     int
	// DefaultSort is used when a request carries no sort parameter.
	DefaultSort SortOrder
	Time        TimeParser
}

const (
	defaultSize    = 100
	defaultMaxSize = 1000
)

// Parser turns a raw multi-valued parameter map into typed Params.
type Parser struct {
	opts Options
}

func NewParser(opts Options) *Parser {
	if opts.DefaultSize <= 0 {
		opts.DefaultSize = defaultSize
	}
	if opts.MaxSize <= 0 {
		opts.MaxSize = defaultMaxSize
	}
	if opts.DefaultSize > opts.MaxSize {
		opts.DefaultSize = opts.MaxSize
	}
	if opts.DefaultSort == SortDefault {
		opts.DefaultSort = SortDescending
	}
	return &Parser{opts: opts}
}

// ParseSortOrder reads a sort value: up/asc, down/desc or relevance.
func ParseSortOrder(value string) (SortOrder, bool) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "up", "asc", "ascending":
		return SortAscending, true
	case "down", "desc", "descending":
		return SortDescending, true
	case "relevance", "score":
		return SortRelevance, true
	}
	return SortDefault, false
}

// Parse validates the raw parameters. Names are matched case-insensitively,
// unrecognized names are collected in Params.Ignored. A recognized parameter
// without any non-blank value is treated as absent.
func (p *Parser) Parse(raw map[string][]string) (*Params, error) {
	values := make(map[string][]string, len(raw))
	present := make(map[string]bool, len(raw))
	keys := make([]string, 0, len(raw))
	for key := range raw {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	out := &Params{Size: p.opts.DefaultSize, Sort: p.opts.DefaultSort}
	for _, key := range keys {
		name := canonicalName(key)
		if name == "" {
			out.Ignored = append(out.Ignored, key)
			continue
		}
		present[name] = true
		for _, v := range raw[key] {
			if v = strings.TrimSpace(v); v != "" {
				values[name] = append(values[name], v)
			}
		}
	}

	if vs := values["title"]; len(vs) > 0 {
		out.Filters = append(out.Filters, TitleParam{Values: vs})
	}
	if vs := values["level"]; len(vs) > 0 {
		out.Filters = append(out.Filters, LevelParam{Values: vs})
	}
	if vs := values["desc"]; len(vs) > 0 {
		out.Filters = append(out.Filters, DescParam{Values: vs})
	}
	if vs := values["phrase"]; len(vs) > 0 {
		out.Filters = append(out.Filters, PhraseParam{Values: vs})
	}
	if vs := values["owner"]; len(vs) > 0 {
		out.Filters = append(out.Filters, OwnerParam{Values: vs})
	}
	if vs := values["tags"]; len(vs) > 0 {
		out.Filters = append(out.Filters, TagsParam{Values: vs})
	}
	if vs := values["logbooks"]; len(vs) > 0 {
		out.Filters = append(out.Filters, LogbooksParam{Values: vs})
	}
	if vs := values["properties"]; len(vs) > 0 {
		param := PropertiesParam{}
		for _, v := range vs {
			param.Paths = append(param.Paths, parsePropertyPath(v))
		}
		out.Filters = append(out.Filters, param)
	}

	tp, err := p.parseTime(values, present["includeevents"])
	if err != nil {
		return nil, err
	}
	if tp != nil {
		out.Filters = append(out.Filters, *tp)
	}

	if err := p.parsePaging(values, out); err != nil {
		return nil, err
	}
	return out, nil
}

func canonicalName(key string) string {
	name := strings.ToLower(strings.TrimSpace(key))
	switch name {
	case "title", "level", "desc", "phrase", "owner", "tags", "logbooks", "properties",
		"start", "end", "includeevents", "size", "from", "sort":
		return name
	case "description":
		return "desc"
	case "limit":
		return "size"
	}
	return ""
}

// parsePropertyPath splits on '.' into at most three segments, the value may
// itself contain dots.
func parsePropertyPath(value string) PropertyPath {
	segments := strings.SplitN(value, ".", 3)
	path := PropertyPath{Name: segments[0]}
	if len(segments) > 1 {
		path.Attribute = segments[1]
	}
	if len(segments) > 2 {
		path.Value = segments[2]
	}
	return path
}

func (p *Parser) parseTime(values map[string][]string, includeEvents bool) (*TimeParam, error) {
	start, err := p.parseBound("start", values["start"])
	if err != nil {
		return nil, err
	}
	end, err := p.parseBound("end", values["end"])
	if err != nil {
		return nil, err
	}
	if start == nil && end == nil {
		return nil, nil
	}
	if start != nil && end != nil && start.After(*end) {
		return nil, &ParameterError{
			Name:   "start",
			Value:  values["start"][0],
			Reason: "start is after end " + p.opts.Time.FormatTime(*end),
		}
	}
	return &TimeParam{Start: start, End: end, IncludeEvents: includeEvents}, nil
}

// parseBound uses the first value of a time bound.
func (p *Parser) parseBound(name string, values []string) (*time.Time, error) {
	if len(values) == 0 {
		return nil, nil
	}
	t, err := p.opts.Time.Parse(values[0])
	if err != nil {
		return nil, &ParameterError{Name: name, Value: values[0], Err: err}
	}
	return &t, nil
}

func (p *Parser) parsePaging(values map[string][]string, out *Params) error {
	if vs := values["size"]; len(vs) > 0 {
		size, err := strconv.Atoi(vs[0])
		if err != nil || size < 1 {
			return &ParameterError{Name: "size", Value: vs[0], Reason: "expected a positive integer"}
		}
		out.Size = min(size, p.opts.MaxSize)
	}
	if vs := values["from"]; len(vs) > 0 {
		from, err := strconv.Atoi(vs[0])
		if err != nil || from < 0 {
			return &ParameterError{Name: "from", Value: vs[0], Reason: "expected a non-negative integer"}
		}
		out.From = from
	}
	if vs := values["sort"]; len(vs) > 0 {
		order, ok := ParseSortOrder(vs[0])
		if !ok {
			return &ParameterError{Name: "sort", Value: vs[0], Reason: "expected up, down or relevance"}
		}
		out.Sort = order
	}
	return nil
}
