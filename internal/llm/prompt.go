package llm

import (
	"fmt"
	"strings"
)

const systemPrompt = "You are an expert code reviewer. Always respond in valid JSON format."

// buildAnalysisPrompt assembles the single review prompt sent to the
// provider: merge request metadata, the development standards to check,
// each file's diff fenced individually, and the mandatory JSON contract.
func buildAnalysisPrompt(req Request) string {
	var diffs strings.Builder
	for i, diff := range req.Diffs {
		if i > 0 {
			diffs.WriteString("\n\n")
		}
		fmt.Fprintf(&diffs, "### File: %s\n```diff\n%s\n```", diff.NewPath, diff.Diff)
	}

	var standards strings.Builder
	for i, std := range req.Standards {
		if i > 0 {
			standards.WriteString("\n")
		}
		fmt.Fprintf(&standards, "- %s", std)
	}

	return fmt.Sprintf(`You are a senior code reviewer. Analyze the following merge request and provide detailed feedback.

**Merge Request Title:** %s

**Description:**
%s

**Development Standards to Check:**
%s

**Code Changes:**
%s

**Instructions:**
1. Review the code changes carefully
2. Identify issues related to:
   - Style violations
   - Code smells and anti-patterns
   - Potential bugs
   - Security vulnerabilities
   - Performance issues
   - Best practice violations
   - Functional correctness

3. Rate the code quality on a scale of 0 to 100 (0=terrible, 100=perfect).

4. Provide your response in the following JSON format:
{
  "comments": [
    {
      "file_path": "path/to/file.go",
      "line": 42,
      "content": "Clear explanation of the issue",
      "severity": "critical|warning|info",
      "type": "bug|security|performance|style_issue|code_smell|best_practice|functional"
    }
  ],
  "summary": "Overall summary of the review (2-3 sentences)",
  "recommendation": "merge|needs_fixes|reject",
  "quality_score": 85
}

Be constructive, specific, and helpful in your feedback.`,
		req.Title, req.Description, standards.String(), diffs.String())
}
