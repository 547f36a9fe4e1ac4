package transform

import "fmt"

// buildPrompt は変換指示のプロンプトを組み立てる。
// モデルにはJSONオブジェクトのみを返すよう要求するが、
// markdownのコードフェンスで包まれて返る場合がある（パース側で対処）。
func buildPrompt(input, language string) string {
	return fmt.Sprintf(`Transform this %s logging code to structured JSON logging.

Input:
%s

Return ONLY a JSON object (no markdown):
{
  "code": "transformed code here",
  "library": "recommended library",
  "install": "installation command",
  "imports": ["import lines"],
  "tips": ["improvement 1", "improvement 2"]
}

Requirements:
- Use structured key-value logging
- Proper log levels (debug/info/warn/error)
- Add correlation/trace IDs where relevant
- Follow %s naming conventions
- Make the code production-ready`, language, input, language)
}
