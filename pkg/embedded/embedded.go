package embedded

import (
	_ "embed"
)

// Embed all prompt data files
//
//go:embed data/prompts/system_prompt.txt
var SystemPromptTxt []byte

//go:embed data/templates/standard.md
var StandardTemplateMd []byte

//go:embed data/templates/one_page.md
var OnePageTemplateMd []byte

//go:embed data/templates/agile_epic.md
var AgileEpicTemplateMd []byte

//go:embed data/templates/feature_brief.md
var FeatureBriefTemplateMd []byte
