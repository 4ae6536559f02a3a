package prompts

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
)

var placeholderPattern = regexp.MustCompile(`\{([a-z_]+)\}`)

// Render substitutes every placeholder in the template's sections. A
// placeholder with no entry in vars is a configuration error; the check runs
// against the template text before substitution, so values containing braces
// never trigger it.
func Render(tmpl Template, vars map[string]string) (system, user string, err error) {
	system, err = renderSection(tmpl.System, vars)
	if err != nil {
		return "", "", err
	}
	user, err = renderSection(tmpl.User, vars)
	if err != nil {
		return "", "", err
	}
	return system, user, nil
}

func renderSection(section string, vars map[string]string) (string, error) {
	var missing []string
	for _, match := range placeholderPattern.FindAllStringSubmatch(section, -1) {
		if _, ok := vars[match[1]]; !ok {
			missing = append(missing, match[1])
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return "", fmt.Errorf("unresolved prompt placeholders: %s", strings.Join(missing, ", "))
	}

	rendered := placeholderPattern.ReplaceAllStringFunc(section, func(m string) string {
		name := m[1 : len(m)-1]
		return vars[name]
	})
	return rendered, nil
}

var topicPrefixPattern = regexp.MustCompile(`^\s*(?:[-*•]|\d+[.)])\s*`)

// ParseTopics splits an LLM topic response into clean, distinct topic lines.
// Numbering and bullet prefixes are stripped; blanks and duplicates dropped.
// Order is preserved. The caller enforces the exact-count contract.
func ParseTopics(raw string) []string {
	seen := make(map[string]bool)
	var topics []string
	for _, line := range strings.Split(raw, "\n") {
		topic := strings.TrimSpace(topicPrefixPattern.ReplaceAllString(line, ""))
		if topic == "" || seen[topic] {
			continue
		}
		seen[topic] = true
		topics = append(topics, topic)
	}
	return topics
}
