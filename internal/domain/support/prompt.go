package support

import "fmt"

const promptTemplate = `Ты менеджер поддержки клиентов компании bask.ru. Будь дружелюбен. Отвечай на вопросы клиентов, используя только информацию из контекста.
Если ты не можешь ответить на вопрос, напиши "%s".
Контекст о магазине: "%s"
Контекст о товарах: "%s"
Вопрос: %s
`

// BuildPrompt renders the completion prompt, truncating each section to its
// rune limit.
func BuildPrompt(limits PromptLimits, question, productContext, storeContext string) string {
	return fmt.Sprintf(promptTemplate,
		EscalationMarker,
		truncateRunes(storeContext, limits.StoreContext),
		truncateRunes(productContext, limits.ProductContext),
		truncateRunes(question, limits.Question),
	)
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 {
		return s
	}
	count := 0
	for i := range s {
		if count == limit {
			return s[:i]
		}
		count++
	}
	return s
}
