package analysis

import "strings"

// MaxPromptTextLen caps how much document text is embedded into the prompt.
// Invoices and payment orders carry their informative fields (header, number,
// totals) in the first few thousand characters; the cap bounds token cost.
const MaxPromptTextLen = 4000

// ownOrganization must never be interpreted as the sender: every inbound
// document mentions it as the recipient.
const ownOrganization = "ООО «Моя фирма»"

// BuildPrompt renders the extraction instructions for one document.
// Pure function of the document text; called fresh for every attempt since
// truncation depends on the current text.
func BuildPrompt(documentText string) string {
	text := truncateRunes(documentText, MaxPromptTextLen)

	var b strings.Builder
	b.WriteString("Проанализируй следующий текст документа и извлеки информацию в формате JSON.\n")
	b.WriteString("Если какое-то поле не найдено, поставь null.\n\n")
	b.WriteString("ВАЖНОЕ ЗАМЕЧАНИЕ: " + ownOrganization + " это наша организация, а не отправитель.\n\n")
	b.WriteString("Текст документа:\n")
	b.WriteString(text)
	b.WriteString("\n\nИзвлеки следующие поля:\n")
	b.WriteString("- document_number: номер документа (строка)\n")
	b.WriteString("- document_date: дата документа в формате ISO (строка, например \"2024-01-15T00:00:00\")\n")
	b.WriteString("- sender: отправитель (юр. лицо) (строка)\n")
	b.WriteString("- purpose: назначение платежа (услуга/товар) (строка)\n")
	b.WriteString("- amount: сумма оплаты (число)\n\n")
	b.WriteString("Верни ТОЛЬКО корректный JSON-объект без дополнительного текста.\n")
	b.WriteString("Пример ответа:\n")
	b.WriteString(`{
    "document_number": "12345",
    "document_date": "2024-01-15T00:00:00",
    "sender": "ООО Ромашка",
    "purpose": "Оплата за товары по счету 123",
    "amount": 15000.00
}`)
	return b.String()
}

// truncateRunes cuts s to at most n characters without splitting a rune.
func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
