package vault

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// Frontmatter handling. The engine only ever reads or writes a handful of
// known keys (maturity, last-assessed, tags); everything else in the
// frontmatter is someone else's data and must come back out untouched.
// Updates therefore go through yaml.Node rather than a map, which keeps
// key order and comments across the round trip.

const frontmatterFence = "---"

// splitFrontmatter separates a note into its YAML frontmatter (without the
// fences) and body. Notes without frontmatter return an empty first value
// and the full content as body.
func splitFrontmatter(content string) (fm, body string) {
	if !strings.HasPrefix(content, frontmatterFence+"\n") && content != frontmatterFence {
		return "", content
	}
	rest := strings.TrimPrefix(content, frontmatterFence+"\n")
	if idx := strings.Index(rest, "\n"+frontmatterFence+"\n"); idx >= 0 {
		return rest[:idx], rest[idx+len("\n"+frontmatterFence+"\n"):]
	}
	if strings.HasSuffix(rest, "\n"+frontmatterFence) {
		return strings.TrimSuffix(rest, "\n"+frontmatterFence), ""
	}
	return "", content
}

// frontmatterValue reads one scalar key from frontmatter text. Missing
// keys, parse failures, and non-scalar values all read as empty.
func frontmatterValue(fm, key string) string {
	if fm == "" {
		return ""
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(fm), &doc); err != nil {
		return ""
	}
	if s, ok := doc[key].(string); ok {
		return s
	}
	return ""
}

// frontmatterList reads one list-valued key from frontmatter text. A
// scalar value reads as a single-element list.
func frontmatterList(fm, key string) []string {
	if fm == "" {
		return nil
	}
	var doc map[string]any
	if err := yaml.Unmarshal([]byte(fm), &doc); err != nil {
		return nil
	}
	switch v := doc[key].(type) {
	case string:
		return []string{v}
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	default:
		return nil
	}
}

// setFrontmatterField sets one scalar key in a note's frontmatter,
// creating the frontmatter block when the note has none. Existing keys are
// updated in place; new keys are appended at the end of the mapping.
func setFrontmatterField(content, key, value string) (string, error) {
	fm, body := splitFrontmatter(content)

	if fm == "" && !strings.HasPrefix(content, frontmatterFence) {
		block := fmt.Sprintf("%s\n%s: %s\n%s\n", frontmatterFence, key, value, frontmatterFence)
		return block + body, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal([]byte(fm), &doc); err != nil {
		return "", fmt.Errorf("parsing frontmatter: %w", err)
	}

	mapping := documentMapping(&doc)
	setMappingKey(mapping, key, value)

	var sb strings.Builder
	enc := yaml.NewEncoder(&sb)
	enc.SetIndent(2)
	if err := enc.Encode(mapping); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}
	if err := enc.Close(); err != nil {
		return "", fmt.Errorf("encoding frontmatter: %w", err)
	}

	encoded := strings.TrimSuffix(sb.String(), "\n")
	return fmt.Sprintf("%s\n%s\n%s\n%s", frontmatterFence, encoded, frontmatterFence, body), nil
}

// documentMapping returns the root mapping node of a parsed document,
// materializing one for empty frontmatter.
func documentMapping(doc *yaml.Node) *yaml.Node {
	if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 && doc.Content[0].Kind == yaml.MappingNode {
		return doc.Content[0]
	}
	return &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
}

// setMappingKey updates the value node for key, or appends a new pair.
func setMappingKey(mapping *yaml.Node, key, value string) {
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		if mapping.Content[i].Value == key {
			mapping.Content[i+1] = scalarNode(value)
			return
		}
	}
	mapping.Content = append(mapping.Content, scalarNode(key), scalarNode(value))
}

func scalarNode(value string) *yaml.Node {
	return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: value}
}
