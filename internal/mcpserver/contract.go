package mcpserver

// MappingContract describes how Markdown sources map onto DITA so LLM
// consumers can author documents that convert cleanly.
const MappingContract = `# Markdown to DITA Mapping

Sources are Markdown with Jekyll-style include directives. Three kinds of
file are converted.

## Fragments

Every ` + "`" + `_includes/**/*.md` + "`" + ` file becomes a reusable topic in ` + "`" + `warehouse/` + "`" + `.
Its body is wrapped in a ` + "`" + `<div>` + "`" + ` whose id derives from the include path, so
other topics reuse it by content reference:

` + "```" + `
{% include nvme-tcp/network.md %}
→ <div conref="../warehouse/warehouse_nvme-tcp_network.dita#warehouse_nvme-tcp_network/nvme-tcp_network_content"/>
` + "```" + `

## Tasks (QUICKSTART.md, GUI-QUICKSTART.md)

| Markdown                                  | DITA                           |
|-------------------------------------------|--------------------------------|
| ` + "`" + `## Prerequisites` + "`" + ` section                 | ` + "`" + `<prereq>` + "`" + `                     |
| any other ` + "`" + `##` + "`" + ` heading                  | ` + "`" + `<step><cmd>heading</cmd>` + "`" + `      |
| content under a step                      | ` + "`" + `<info>` + "`" + ` of that step           |
| content before the first step             | ` + "`" + `<context>` + "`" + `                    |

## Concepts (BEST-PRACTICES.md)

Each ` + "`" + `##` + "`" + ` section becomes a ` + "`" + `<section>` + "`" + `. In a tree conversion each section
is written as its own concept and grouped under the document title in the map.
A "Table of Contents" section is dropped.

## Blocks

| Markdown                                  | DITA                                 |
|-------------------------------------------|--------------------------------------|
| fenced code with a language               | ` + "`" + `<codeblock outputclass="x">` + "`" + ` |
| ` + "```" + `mermaid fence                           | ` + "`" + `<fig><image href="../images/…"/>` + "`" + `  |
| ` + "`" + `> **Warning:** …` + "`" + ` blockquote               | ` + "`" + `<note type="warning">` + "`" + `             |
| pipe table                                | ` + "`" + `<table><tgroup>` + "`" + `                   |
| ` + "`" + `-` + "`" + ` / ` + "`" + `1.` + "`" + ` lists                             | ` + "`" + `<ul>` + "`" + ` / ` + "`" + `<ol>` + "`" + `                        |
| ` + "`" + `###` + "`" + ` and deeper headings                | bold paragraph                       |

## Inline

` + "`" + `**bold**` + "`" + ` → ` + "`" + `<b>` + "`" + `, ` + "`" + `*italic*` + "`" + ` → ` + "`" + `<i>` + "`" + `, backtick code → ` + "`" + `<codeph>` + "`" + `,
` + "`" + `[text](url)` + "`" + ` → ` + "`" + `<xref href="url" scope="external">` + "`" + `.

## Rules

1. Use exactly one level-1 heading; it becomes the topic title unless front
   matter sets ` + "`" + `title` + "`" + `.
2. Include paths are relative to ` + "`" + `_includes/` + "`" + ` and must name an existing file.
3. Keep raw HTML out of sources; it is escaped.
`
