package domain

import "strings"

// MetricSample is one sample line of the exposition file, joined with the
// HELP and TYPE comments seen for its metric name.
type MetricSample struct {
	Name  string `json:"name"`
	Value string `json:"value"`
	Help  string `json:"help,omitempty"`
	Type  string `json:"type,omitempty"`
}

// MetricsReport keeps the raw text next to the parsed samples; hosts render
// the raw text verbatim when they cannot do better.
type MetricsReport struct {
	Path    string         `json:"path"`
	Raw     string         `json:"raw"`
	Samples []MetricSample `json:"samples"`
}

// ParseMetrics reads "# HELP name text", "# TYPE name kind" and
// "name value" lines. Anything else is ignored.
func ParseMetrics(raw string) []MetricSample {
	help := map[string]string{}
	kind := map[string]string{}
	var samples []MetricSample

	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		switch {
		case line == "":
			continue
		case strings.HasPrefix(line, "# HELP "):
			name, text, _ := strings.Cut(strings.TrimPrefix(line, "# HELP "), " ")
			help[name] = text
		case strings.HasPrefix(line, "# TYPE "):
			name, text, _ := strings.Cut(strings.TrimPrefix(line, "# TYPE "), " ")
			kind[name] = text
		case strings.HasPrefix(line, "#"):
			continue
		default:
			name, rest := splitSampleName(line)
			fields := strings.Fields(rest)
			if name == "" || len(fields) == 0 {
				continue
			}
			samples = append(samples, MetricSample{Name: name, Value: fields[0]})
		}
	}

	for i := range samples {
		base := samples[i].Name
		if idx := strings.IndexByte(base, '{'); idx >= 0 {
			base = base[:idx]
		}
		samples[i].Help = help[base]
		samples[i].Type = kind[base]
	}
	return samples
}

// splitSampleName separates the metric name (labels included, which may
// contain spaces inside quotes) from the rest of the line.
func splitSampleName(line string) (string, string) {
	open := strings.IndexByte(line, '{')
	space := strings.IndexAny(line, " \t")
	if open >= 0 && (space < 0 || open < space) {
		end := strings.IndexByte(line[open:], '}')
		if end < 0 {
			return "", ""
		}
		end += open + 1
		return line[:end], line[end:]
	}
	if space < 0 {
		return line, ""
	}
	return line[:space], line[space:]
}
