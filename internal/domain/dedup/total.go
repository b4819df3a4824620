// Package dedup считает итоговые суммы шагов по истории, в которой
// за одну дату может быть несколько строк.
package dedup

// Entry одна строка истории: дата и значение за эту дату.
type Entry struct {
	Date  string `json:"date"`
	Steps int    `json:"steps"`
}

// UserEntry строка истории с владельцем.
type UserEntry struct {
	UserID int64  `json:"user_id"`
	Date   string `json:"date"`
	Steps  int    `json:"steps"`
}

// Total возвращает сумму максимумов по каждой дате.
// Повторные строки за одну дату не суммируются: берется наибольшее значение.
func Total(entries []Entry) int {
	maxByDate := make(map[string]int, len(entries))
	for _, e := range entries {
		if cur, ok := maxByDate[e.Date]; !ok || e.Steps > cur {
			maxByDate[e.Date] = e.Steps
		}
	}

	total := 0
	for _, steps := range maxByDate {
		total += steps
	}
	return total
}

// TotalsByUser группирует строки по пользователю и считает Total для каждого.
func TotalsByUser(entries []UserEntry) map[int64]int {
	byUser := make(map[int64][]Entry)
	for _, e := range entries {
		byUser[e.UserID] = append(byUser[e.UserID], Entry{Date: e.Date, Steps: e.Steps})
	}

	totals := make(map[int64]int, len(byUser))
	for userID, userEntries := range byUser {
		totals[userID] = Total(userEntries)
	}
	return totals
}
