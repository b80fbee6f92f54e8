package main

import (
	"fmt"
	"io"
	"time"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"github.com/hrygo/gotadate/server/timezone"
)

type renderer func(out io.Writer, results []*fileResult) error

func rendererFor(format string) (renderer, error) {
	switch format {
	case "text", "":
		return renderText, nil
	case "json":
		return renderJSON, nil
	case "yaml":
		return renderYAML, nil
	default:
		return nil, fmt.Errorf("unknown format %q (want text, json or yaml)", format)
	}
}

// renderText prints one line per timestamp. The input name is prefixed only
// when several inputs were scanned.
func renderText(out io.Writer, results []*fileResult) error {
	for _, res := range results {
		for _, t := range res.Timestamps {
			var err error
			if len(results) > 1 {
				_, err = fmt.Fprintf(out, "%s\t%s\n", res.Name, timezone.FormatExtracted(t))
			} else {
				_, err = fmt.Fprintln(out, timezone.FormatExtracted(t))
			}
			if err != nil {
				return err
			}
		}
		if res.UID != "" {
			if _, err := fmt.Fprintf(out, "# saved %s as %s\n", res.Name, res.UID); err != nil {
				return err
			}
		}
	}
	return nil
}

func renderJSON(out io.Writer, results []*fileResult) error {
	data, err := json.MarshalIndent(results, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(out, string(data))
	return err
}

// yamlResult renders timestamps as RFC 3339 strings.
type yamlResult struct {
	Name       string   `yaml:"name"`
	Timestamps []string `yaml:"timestamps"`
	Reference  string   `yaml:"reference"`
	Timezone   string   `yaml:"timezone"`
	UID        string   `yaml:"uid,omitempty"`
}

func renderYAML(out io.Writer, results []*fileResult) error {
	docs := make([]yamlResult, len(results))
	for i, res := range results {
		timestamps := make([]string, len(res.Timestamps))
		for j, t := range res.Timestamps {
			timestamps[j] = t.Format(time.RFC3339)
		}
		docs[i] = yamlResult{
			Name:       res.Name,
			Timestamps: timestamps,
			Reference:  res.Reference.Format(time.RFC3339),
			Timezone:   res.Timezone,
			UID:        res.UID,
		}
	}
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)
	if err := enc.Encode(docs); err != nil {
		return err
	}
	return enc.Close()
}
