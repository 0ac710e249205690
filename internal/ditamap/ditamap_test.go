package ditamap

import (
	"strings"
	"testing"

	"github.com/starford/mddita/internal/models"
)

func task(id, path string) models.Topic {
	return models.Topic{ID: id, Title: id, Kind: models.KindTask, SourcePath: path}
}

func TestBuild_GroupsAndOrdering(t *testing.T) {
	topics := []models.Topic{
		task("suse_iscsi", "distributions/suse/iscsi/QUICKSTART.md"),
		task("rhel_nvme", "distributions/rhel/nvme-tcp/QUICKSTART.md"),
		task("proxmox", "Proxmox/QUICKSTART.md"),
		task("rhel_iscsi", "distributions/rhel/iscsi/QUICKSTART.md"),
		task("rhel_gui", "distributions/rhel/nvme-tcp/GUI-QUICKSTART.md"),
		task("readme", "getting-started/QUICKSTART.md"),
		{
			ID:         "distributions_debian_best-practices",
			Title:      "Debian Best Practices",
			Kind:       models.KindConceptParent,
			SourcePath: "distributions/debian/BEST-PRACTICES.md",
			Children: []models.Topic{
				{ID: "distributions_debian_best-practices_network", Title: "Debian Best Practices - Network", NavTitle: "Network"},
				{ID: "distributions_debian_best-practices_tuning", Title: "Debian Best Practices - Tuning", NavTitle: "Tuning"},
			},
		},
	}

	got := string(Build(topics, DefaultRules()))
	want := `<?xml version="1.0" encoding="UTF-8"?>
<!DOCTYPE map PUBLIC "-//OASIS//DTD DITA Map//EN" "map.dtd">
<map>
    <title>Linux Storage Configuration Guides</title>
    <topichead navtitle="Proxmox">
        <topichead navtitle="Other">
            <topicref href="../topics/proxmox.dita"/>
        </topichead>
    </topichead>
    <topichead navtitle="Debian">
        <topichead navtitle="Other">
            <topichead navtitle="Best Practices">
                <topicref href="../topics/distributions_debian_best-practices_network.dita" navtitle="Network"/>
                <topicref href="../topics/distributions_debian_best-practices_tuning.dita" navtitle="Tuning"/>
            </topichead>
        </topichead>
    </topichead>
    <topichead navtitle="RHEL">
        <topichead navtitle="NVMe-TCP">
            <topicref href="../topics/rhel_nvme.dita"/>
            <topicref href="../topics/rhel_gui.dita"/>
        </topichead>
        <topichead navtitle="iSCSI">
            <topicref href="../topics/rhel_iscsi.dita"/>
        </topichead>
    </topichead>
    <topichead navtitle="SUSE">
        <topichead navtitle="iSCSI">
            <topicref href="../topics/suse_iscsi.dita"/>
        </topichead>
    </topichead>
    <topichead navtitle="Common Resources">
        <topicref href="../topics/readme.dita"/>
    </topichead>
</map>
`
	if got != want {
		t.Errorf("got:\n%s\nwant:\n%s", got, want)
	}
}

func TestBuild_ParentInCommonGroupKeepsChildren(t *testing.T) {
	topics := []models.Topic{{
		ID:         "guide",
		Title:      "Guide",
		Kind:       models.KindConceptParent,
		SourcePath: "BEST-PRACTICES.md",
		Children:   []models.Topic{{ID: "guide_overview", Title: "Guide - Overview", NavTitle: "Overview"}},
	}}
	got := string(Build(topics, DefaultRules()))
	if !strings.Contains(got, `<topichead navtitle="Guide">`) {
		t.Errorf("parent title should fall back to the topic title:\n%s", got)
	}
	if !strings.Contains(got, `<topicref href="../topics/guide_overview.dita" navtitle="Overview"/>`) {
		t.Errorf("child missing:\n%s", got)
	}
	if strings.Contains(got, "../topics/guide.dita") {
		t.Errorf("parent has no file of its own:\n%s", got)
	}
}

func TestRules_Group(t *testing.T) {
	r := DefaultRules()
	tests := []struct {
		path   string
		key    string
		inDist bool
	}{
		{"distributions/rhel/QUICKSTART.md", "rhel", true},
		{"distributions/QUICKSTART.md", "", false},
		{"Proxmox/iscsi/QUICKSTART.md", "Proxmox", true},
		{"ProxmoxVE/QUICKSTART.md", "", false},
		{"other/QUICKSTART.md", "", false},
	}
	for _, tt := range tests {
		key, ok := r.Group(tt.path)
		if key != tt.key || ok != tt.inDist {
			t.Errorf("Group(%q) = %q, %v, want %q, %v", tt.path, key, ok, tt.key, tt.inDist)
		}
	}
}

func TestRules_CustomTaxonomy(t *testing.T) {
	r := Rules{
		Title:              "Guides",
		DistributionPrefix: "os/",
		Labels:             map[string]string{},
		Protocols:          []Rule{{Match: "FC", Label: "Fibre Channel"}},
		OtherProtocol:      "Misc",
		CommonTitle:        "Shared",
		TopicsDir:          "out",
	}
	if got := r.Protocol("os/ubuntu/fc/QUICKSTART.md"); got != "Fibre Channel" {
		t.Errorf("Protocol = %q", got)
	}
	if got := r.Protocol("os/ubuntu/QUICKSTART.md"); got != "Misc" {
		t.Errorf("Protocol = %q", got)
	}
	if got := r.Label("ubuntu"); got != "Ubuntu" {
		t.Errorf("Label = %q", got)
	}
	out := string(Build([]models.Topic{task("x", "os/ubuntu/fc/QUICKSTART.md")}, r))
	if !strings.Contains(out, `href="../out/x.dita"`) || !strings.Contains(out, "<title>Guides</title>") {
		t.Errorf("unexpected map:\n%s", out)
	}
}
