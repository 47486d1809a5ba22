// Package contentfile encodes and decodes entity files: a YAML
// frontmatter header between "---" fences followed by a free-text body.
package contentfile

import (
	"bytes"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/branwick/lorekeeper/internal/models"
)

const fence = "---"

// Ext is the file extension for entity files.
const Ext = ".md"

// Encode renders frontmatter and body into the on-disk file format.
func Encode(fm models.Frontmatter, content string) ([]byte, error) {
	header, err := yaml.Marshal(map[string]any(fm))
	if err != nil {
		return nil, fmt.Errorf("marshaling frontmatter: %w", err)
	}

	var buf bytes.Buffer
	buf.WriteString(fence + "\n")
	buf.Write(header)
	buf.WriteString(fence + "\n")
	if content != "" {
		buf.WriteString(content)
		if !strings.HasSuffix(content, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes(), nil
}

// Decode parses an entity file into its frontmatter and body. The file
// must begin with a fenced YAML header; anything after the closing fence
// is the body, with surrounding blank lines trimmed.
func Decode(data []byte) (models.Frontmatter, string, error) {
	text := string(data)
	if !strings.HasPrefix(text, fence+"\n") && text != fence {
		return nil, "", fmt.Errorf("missing frontmatter fence")
	}

	rest := strings.TrimPrefix(text, fence+"\n")
	header, body, found := strings.Cut(rest, "\n"+fence)
	if !found {
		// A fence on the very first line of rest closes an empty header.
		if strings.HasPrefix(rest, fence+"\n") || rest == fence {
			header, body = "", strings.TrimPrefix(rest, fence)
		} else {
			return nil, "", fmt.Errorf("unterminated frontmatter")
		}
	}

	var fm models.Frontmatter
	if err := yaml.Unmarshal([]byte(header), &fm); err != nil {
		return nil, "", fmt.Errorf("parsing frontmatter: %w", err)
	}
	if fm == nil {
		fm = models.Frontmatter{}
	}

	body = strings.TrimPrefix(body, "\n")
	return fm, strings.TrimSpace(body), nil
}
