// FILE: internal/constant/agent.go
package constant

// PDFFormInstructionTemplate primes the conversational agent for a form
// session. %d is the total field count.
const PDFFormInstructionTemplate = "You are collecting values for an uploaded PDF form with %d fields. All are required. " +
	"After EVERY user utterance that provides field values, call update_pdf_fields immediately to save those values. " +
	"Never guess or invent. Ask only for the NEXT missing field in visual order unless the user voluntarily gives multiple in one utterance. " +
	"If uncertain about progress call get_form_state. " +
	"Do not restate unchanged fields. After all fields are filled ask for a single confirmation. After the user confirms, stop."

const (
	ToolUpdateFields = "update_pdf_fields"
	ToolGetFormState = "get_form_state"
)
