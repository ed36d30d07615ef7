package analysis

import "fmt"

const categoryLabels = "环境卫生/市政设施/交通出行/噪音扰民/物业管理/行政效率/其他"

// BuildIntentPrompt renders the structured-analysis instruction around the citizen's text.
// The text is embedded verbatim.
func BuildIntentPrompt(content string) string {
	return fmt.Sprintf(`你是一个政务热线工单分析专家。请仔细分析以下市民反馈，提取关键信息。

市民反馈: %s

请严格按照以下JSON格式输出分析结果（不要包含任何其他文字）：
{
  "core_issues": ["问题1", "问题2"],
  "entities": {
    "location": "位置信息",
    "time": "时间信息",
    "departments": ["相关部门"]
  },
  "sentiment": {
    "type": "positive/neutral/negative",
    "intensity": 0.75,
    "urgency": "low/medium/high",
    "keywords": ["关键词1", "关键词2"]
  },
  "summary": "一句话摘要（不超过50字）",
  "suggested_category": "工单类别",
  "suggested_department": "建议分派部门",
  "priority": "low/medium/high"
}

分析要点:
1. core_issues: 识别所有核心问题，可能包含多个
2. entities: 提取地点、时间等关键实体
3. sentiment: 准确判断情绪类型和紧急程度
4. summary: 简洁准确地概括问题
5. suggested_category: 从以下类别中选择: %s
6. suggested_department: 建议最合适的处理部门
7. priority: 综合考虑紧急程度和影响范围

请直接输出JSON，不要有其他内容。`, content, categoryLabels)
}

func buildSummaryPrompt(content string) string {
	return "请用一句话（不超过50字）概括以下市民反馈的核心问题：\n\n" + content
}

func buildKeywordsPrompt(content string) string {
	return "从以下文本中提取3-5个关键词，用逗号分隔：\n\n" + content
}

func buildSolutionPrompt(content, category string) string {
	return fmt.Sprintf(`
作为政务热线专家，请为以下问题提供专业的解决方案建议：

问题类别：%s
问题描述：%s

请提供：
1. 可能的解决方案（2-3条）
2. 预计处理时间
3. 注意事项

用简洁专业的语言回答，不超过200字。
`, category, content)
}

func buildAlertPrompt(trends Trends) string {
	var lines string
	for _, a := range trends.Alerts {
		lines += fmt.Sprintf("- [%s] %s：%s\n", a.Level, a.Title, a.Description)
	}
	return fmt.Sprintf(`作为政务热线数据分析员，请根据以下预警信息写一段不超过150字的值班简报，指出需要优先处理的问题和建议措施。

统计工单数：%d
预警列表：
%s
请直接输出简报正文。`, trends.TotalAnalyzed, lines)
}
