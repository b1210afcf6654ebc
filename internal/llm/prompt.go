package llm

import (
	"strings"

	"github.com/joseph-ayodele/vetting-tracker/constants"
)

const financeRules = `From the text given below, extract the following information strictly following the rules mentioned.

CRITICAL RULES:
1. Extract plan_head exactly as written.
2. Extract work_name exactly as written.
3. Extract designation, date and time from the approval flow.

DESIGNATION EXTRACTION RULES (VERY IMPORTANT):
- Keep the COMPLETE designation exactly as it appears, including everything after the forward slash (/).
- Examples:
  * If text shows "SR. DFM/JU" → extract as "SR. DFM/JU" (NOT "SR. DFM")
  * If text shows "SDEE/JU" → extract as "SDEE/JU" (NOT "SDEE")
  * If text shows "CCM/NWR" → extract as "CCM/NWR" (NOT "CCM")
  * If text shows "Sr. DEN (Co)/JU" → extract as "Sr. DEN (Co)/JU"
  * If text shows "SRDEN/ CENTRAL" → extract as "SRDEN/CENTRAL"
- DO NOT remove or truncate anything after the "/" character
- The part after "/" is the department code and MUST be preserved

4. Extract dates in the format shown (DD/MM/YYYY or similar)
5. Extract times in the format shown (HH:MM:SS)

Return STRICT JSON only in this format:
{
  "plan_head": "...",
  "work_name": "...",
  "right_side_flow": [
    {
      "designation": "COMPLETE designation with /DEPARTMENT",
      "date": "DD/MM/YYYY",
      "time": "HH:MM:SS"
    }
  ]
}`

const approvalRules = `From the OCR text below extract:

1. plan_head
2. work_name
3. right_side_flow (designation, date, time)
4. gm_approval_date, if the document header carries one

Rules:
- Keep COMPLETE designation including everything after "/"
- Do NOT remove department codes
- Extract dates exactly as shown
- Extract times exactly as shown
- Use "" for anything that is not present; never output null

Return STRICT JSON only in this format:

{
  "plan_head": "...",
  "work_name": "...",
  "gm_approval_date": "DD/MM/YYYY",
  "right_side_flow": [
    {
      "designation": "...",
      "date": "DD/MM/YYYY",
      "time": "HH:MM:SS"
    }
  ]
}`

// BuildFinancePrompt puts the caller's prompt in front of the fixed extraction rules.
func BuildFinancePrompt(userPrompt, text string) string {
	var b strings.Builder
	if p := strings.TrimSpace(userPrompt); p != "" {
		b.WriteString(p)
		b.WriteString("\n\n")
	}
	b.WriteString(financeRules)
	b.WriteString("\n\nOCR TEXT:\n")
	b.WriteString(text)
	b.WriteString("\n")
	return b.String()
}

func BuildApprovalPrompt(text string) string {
	return approvalRules + "\n\nOCR TEXT:\n" + text + "\n"
}

// BuildPrompt picks the prompt for the request's document kind.
func BuildPrompt(req ExtractRequest) string {
	if req.Kind == constants.Approval {
		return BuildApprovalPrompt(req.Text)
	}
	return BuildFinancePrompt(req.Prompt, req.Text)
}

// SystemPrompt is sent ahead of every extraction.
const SystemPrompt = "You extract approval-flow data from scanned railway vetting documents. " +
	"Return ONLY JSON that matches the provided JSON Schema."
