package tools

import (
	"context"
	"fmt"

	"github.com/Latias94/miniagent/pkg/skills"
)

// GetSkillTool serves the full body of a named skill so the model can pull
// in detailed instructions only when needed.
type GetSkillTool struct {
	loader *skills.Loader
}

func NewGetSkillTool(loader *skills.Loader) *GetSkillTool {
	return &GetSkillTool{loader: loader}
}

func (t *GetSkillTool) Name() string {
	return "get_skill"
}

func (t *GetSkillTool) Description() string {
	return "Get full content of a named skill"
}

func (t *GetSkillTool) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"skill_name": map[string]any{"type": "string"},
		},
		"required": []any{"skill_name"},
	}
}

func (t *GetSkillTool) Execute(ctx context.Context, args map[string]any) *ToolResult {
	name, ok := stringArg(args, "skill_name")
	if !ok {
		return ErrorResult("missing 'skill_name'")
	}
	skill, found := t.loader.Get(name)
	if !found {
		return ErrorResult(fmt.Sprintf("Skill '%s' not found", name))
	}
	return TextResult(fmt.Sprintf("# Skill: %s\n\n%s\n\n---\n\n%s",
		skill.Name, skill.Description, skill.Content))
}
