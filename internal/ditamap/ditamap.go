// Package ditamap builds the navigation map that ties emitted topics
// together.
package ditamap

import (
	"path"
	"sort"
	"strings"

	"github.com/starford/mddita/internal/dita"
	"github.com/starford/mddita/internal/inline"
	"github.com/starford/mddita/internal/models"
)

// Rule maps a case-insensitive substring to a label.
type Rule struct {
	Match string
	Label string
}

// Rules drive the grouping of topics in the map.
//
// A topic whose source path starts with DistributionPrefix and has a file
// below the next directory is grouped under that directory name. A path
// starting with one of Singletons is grouped under the singleton itself.
// Everything else lands in the common group.
type Rules struct {
	Title              string
	DistributionPrefix string
	Singletons         []string
	Labels             map[string]string
	Protocols          []Rule
	OtherProtocol      string
	CommonTitle        string
	ParentTitles       []Rule
	TopicsDir          string
}

// DefaultRules returns the grouping used for the storage configuration guides.
func DefaultRules() Rules {
	return Rules{
		Title:              "Linux Storage Configuration Guides",
		DistributionPrefix: "distributions/",
		Singletons:         []string{"Proxmox"},
		Labels:             map[string]string{"rhel": "RHEL", "suse": "SUSE"},
		Protocols: []Rule{
			{Match: "nvme-tcp", Label: "NVMe-TCP"},
			{Match: "iscsi", Label: "iSCSI"},
		},
		OtherProtocol: "Other",
		CommonTitle:   "Common Resources",
		ParentTitles:  []Rule{{Match: "best-practices", Label: "Best Practices"}},
		TopicsDir:     "topics",
	}
}

// Group returns the distribution key for sourcePath, or false when the
// topic belongs to the common group.
func (r Rules) Group(sourcePath string) (string, bool) {
	if r.DistributionPrefix != "" && strings.HasPrefix(sourcePath, r.DistributionPrefix) {
		parts := strings.Split(strings.TrimPrefix(sourcePath, r.DistributionPrefix), "/")
		if len(parts) >= 2 && parts[0] != "" {
			return parts[0], true
		}
	}
	for _, s := range r.Singletons {
		if strings.HasPrefix(sourcePath, s+"/") {
			return s, true
		}
	}
	return "", false
}

// Label returns the display label of a distribution key.
func (r Rules) Label(key string) string {
	if l, ok := r.Labels[key]; ok {
		return l
	}
	return inline.TitleCase(key)
}

// Protocol returns the label of the first protocol rule found in sourcePath.
func (r Rules) Protocol(sourcePath string) string {
	if l, ok := match(r.Protocols, sourcePath); ok {
		return l
	}
	return r.OtherProtocol
}

func (r Rules) parentTitle(t models.Topic) string {
	if l, ok := match(r.ParentTitles, t.ID); ok {
		return l
	}
	return t.Title
}

func match(rules []Rule, s string) (string, bool) {
	lower := strings.ToLower(s)
	for _, rule := range rules {
		if strings.Contains(lower, strings.ToLower(rule.Match)) {
			return rule.Label, true
		}
	}
	return "", false
}

// Build renders the map for topics. Distributions are sorted by key and
// protocols by label; topics keep their input order within a bucket. The
// common group comes last.
func Build(topics []models.Topic, rules Rules) []byte {
	groups := make(map[string][]models.Topic)
	var keys []string
	var common []models.Topic

	for _, t := range topics {
		key, ok := rules.Group(t.SourcePath)
		if !ok {
			common = append(common, t)
			continue
		}
		if _, seen := groups[key]; !seen {
			keys = append(keys, key)
		}
		groups[key] = append(groups[key], t)
	}
	sort.Strings(keys)

	root := dita.El("map", dita.Text("title", inline.Escape(rules.Title)))

	for _, key := range keys {
		byProtocol := make(map[string][]models.Topic)
		var protocols []string
		for _, t := range groups[key] {
			p := rules.Protocol(t.SourcePath)
			if _, seen := byProtocol[p]; !seen {
				protocols = append(protocols, p)
			}
			byProtocol[p] = append(byProtocol[p], t)
		}
		sort.Strings(protocols)

		dist := topichead(rules.Label(key))
		for _, p := range protocols {
			proto := topichead(p)
			for _, t := range byProtocol[p] {
				proto.Append(rules.entry(t))
			}
			dist.Append(proto)
		}
		root.Append(dist)
	}

	if len(common) > 0 {
		head := topichead(rules.CommonTitle)
		for _, t := range common {
			head.Append(rules.entry(t))
		}
		root.Append(head)
	}

	return dita.Render(dita.DoctypeMap, root)
}

func (r Rules) entry(t models.Topic) *dita.Node {
	if t.Kind != models.KindConceptParent {
		return dita.El("topicref").Set("href", r.href(t.ID))
	}
	head := topichead(r.parentTitle(t))
	for _, c := range t.Children {
		nav := c.NavTitle
		if nav == "" {
			nav = c.Title
		}
		head.Append(dita.El("topicref").Set("href", r.href(c.ID)).Set("navtitle", nav))
	}
	return head
}

// href is relative to the maps directory, a sibling of the topics directory.
func (r Rules) href(id string) string {
	dir := r.TopicsDir
	if dir == "" {
		dir = "topics"
	}
	return path.Join("..", dir, id+".dita")
}

func topichead(title string) *dita.Node {
	return dita.El("topichead").Set("navtitle", title)
}
