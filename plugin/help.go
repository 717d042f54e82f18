package plugin

import (
	"fmt"
	"strings"
)

// FormatHelpText 为所有注册的生成器生成帮助文本
func FormatHelpText(registry *Registry) string {
	generators := registry.Generators()
	if len(generators) == 0 {
		return "  (暂无已注册的生成器)\n"
	}

	var sb strings.Builder

	for _, gen := range generators {
		annotations := gen.Annotations()
		if len(annotations) == 0 {
			continue
		}

		mainAnnotation := annotations[0]
		sb.WriteString(fmt.Sprintf("  @%s - %s\n", mainAnnotation, gen.Name()))

		paramDefs := gen.ParamDefs()
		if len(paramDefs) > 0 {
			sb.WriteString("    参数:\n")
			for _, param := range paramDefs {
				sb.WriteString("      " + FormatParamDef(param) + "\n")
			}
		}

		sb.WriteString("\n")
	}

	return sb.String()
}

// FormatParamDef 格式化单个参数定义
func FormatParamDef(param ParamDef) string {
	parts := []string{param.Name}

	if param.Required {
		parts = append(parts, "(必填)")
	}

	if param.Default != "" {
		parts = append(parts, fmt.Sprintf("[默认: %s]", param.Default))
	}

	if param.Description != "" {
		parts = append(parts, "- "+param.Description)
	}

	return strings.Join(parts, " ")
}
