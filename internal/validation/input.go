package validation

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"
)

// Константы валидации
const (
	MinContactNameLength     = 2
	MaxContactNameLength     = 100
	MaxCompanyNameLength     = 200
	MinListingTitleLength    = 3
	MaxListingTitleLength    = 200
	MinListingDescription    = 10
	MaxListingDescription    = 5000
	MaxRejectionReasonLength = 1000
	MaxBioLength             = 1000
	MaxLocationLength        = 200
	MaxHashtagLength         = 50
	MaxHashtagsCount         = 30
	MaxMediaURLsCount        = 20
	MaxURLLength             = 1000
	MinPrice                 = 0.0
	MaxPrice                 = 100000000.0
	MaxSearchLength          = 200
	MaxMeetingNotesLength    = 2000
)

var (
	emailLocalRegex  = regexp.MustCompile(`^[a-z0-9._+-]+$`)
	emailDomainRegex = regexp.MustCompile(`^[a-z0-9.-]+\.[a-z]{2,}$`)
)

// ValidateLength проверяет длину строки.
func ValidateLength(fieldName, value string, min, max int) error {
	length := utf8.RuneCountInString(value)
	if min > 0 && length < min {
		return fmt.Errorf("%s должен быть не менее %d символов", fieldName, min)
	}
	if max > 0 && length > max {
		return fmt.Errorf("%s должен быть не более %d символов", fieldName, max)
	}
	return nil
}

// ValidateNonEmpty проверяет, что строка не пустая.
func ValidateNonEmpty(fieldName, value string) error {
	if strings.TrimSpace(value) == "" {
		return fmt.Errorf("%s не может быть пустым", fieldName)
	}
	return nil
}

// ValidateEmail проверяет формат email.
func ValidateEmail(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" {
		return fmt.Errorf("email обязателен")
	}

	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return fmt.Errorf("некорректный формат email")
	}

	local, domain := parts[0], parts[1]
	if len(local) == 0 || len(local) > 64 {
		return fmt.Errorf("локальная часть email должна быть от 1 до 64 символов")
	}
	if len(domain) == 0 || len(domain) > 255 {
		return fmt.Errorf("доменная часть email должна быть от 1 до 255 символов")
	}
	if !emailLocalRegex.MatchString(local) {
		return fmt.Errorf("локальная часть email содержит недопустимые символы")
	}
	if !emailDomainRegex.MatchString(domain) {
		return fmt.Errorf("доменная часть email имеет некорректный формат")
	}
	return nil
}

// ValidateContactName проверяет имя контактного лица.
func ValidateContactName(name string) error {
	if err := ValidateNonEmpty("контактное имя", name); err != nil {
		return err
	}
	return ValidateLength("контактное имя", strings.TrimSpace(name), MinContactNameLength, MaxContactNameLength)
}

// ValidateOptionalText проверяет необязательное текстовое поле на максимальную длину.
func ValidateOptionalText(fieldName string, value *string, max int) error {
	if value == nil {
		return nil
	}
	return ValidateLength(fieldName, strings.TrimSpace(*value), 0, max)
}

// ValidateListingTitle проверяет заголовок объявления.
func ValidateListingTitle(title string) error {
	if err := ValidateNonEmpty("заголовок", title); err != nil {
		return err
	}
	return ValidateLength("заголовок", strings.TrimSpace(title), MinListingTitleLength, MaxListingTitleLength)
}

// ValidateListingDescription проверяет описание объявления.
func ValidateListingDescription(description string) error {
	if err := ValidateNonEmpty("описание", description); err != nil {
		return err
	}
	return ValidateLength("описание", strings.TrimSpace(description), MinListingDescription, MaxListingDescription)
}

// ValidatePriceRange проверяет диапазон цены спонсорства.
func ValidatePriceRange(priceMin, priceMax *float64) error {
	for _, p := range []*float64{priceMin, priceMax} {
		if p == nil {
			continue
		}
		if *p < MinPrice {
			return fmt.Errorf("цена не может быть отрицательной")
		}
		if *p > MaxPrice {
			return fmt.Errorf("цена не может превышать %.0f", MaxPrice)
		}
	}

	if priceMin != nil && priceMax != nil && *priceMin > *priceMax {
		return fmt.Errorf("минимальная цена не может быть больше максимальной")
	}
	return nil
}

// ValidateDateRange проверяет, что начало не позже окончания.
func ValidateDateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return fmt.Errorf("дата начала не может быть позже даты окончания")
	}
	return nil
}

// ValidateURL проверяет абсолютную http(s) ссылку.
func ValidateURL(fieldName, link string) error {
	link = strings.TrimSpace(link)
	if err := ValidateLength(fieldName, link, 1, MaxURLLength); err != nil {
		return err
	}

	parsed, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("%s: некорректный формат URL", fieldName)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return fmt.Errorf("%s: ссылка должна начинаться с http:// или https://", fieldName)
	}
	if parsed.Host == "" {
		return fmt.Errorf("%s: ссылка должна содержать доменное имя", fieldName)
	}
	return nil
}

// ValidateOptionalURL проверяет ссылку, если она задана.
func ValidateOptionalURL(fieldName string, link *string) error {
	if link == nil || strings.TrimSpace(*link) == "" {
		return nil
	}
	return ValidateURL(fieldName, *link)
}

// ValidateMediaURLs проверяет список ссылок на медиа.
func ValidateMediaURLs(urls []string) error {
	if len(urls) > MaxMediaURLsCount {
		return fmt.Errorf("не более %d медиафайлов", MaxMediaURLsCount)
	}
	for _, u := range urls {
		if err := ValidateURL("media_urls", u); err != nil {
			return err
		}
	}
	return nil
}

// ValidateHashtags проверяет хэштеги публикации.
func ValidateHashtags(tags []string) error {
	if len(tags) > MaxHashtagsCount {
		return fmt.Errorf("количество хэштегов не может превышать %d", MaxHashtagsCount)
	}

	seen := make(map[string]bool, len(tags))
	for _, tag := range tags {
		tag = strings.TrimPrefix(strings.TrimSpace(tag), "#")
		if tag == "" {
			return fmt.Errorf("хэштег не может быть пустым")
		}
		if utf8.RuneCountInString(tag) > MaxHashtagLength {
			return fmt.Errorf("хэштег не может быть длиннее %d символов", MaxHashtagLength)
		}
		lower := strings.ToLower(tag)
		if seen[lower] {
			return fmt.Errorf("хэштег '%s' указан дважды", tag)
		}
		seen[lower] = true
	}
	return nil
}

// NormalizeHashtags убирает '#' и пробелы.
func NormalizeHashtags(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		out = append(out, strings.TrimPrefix(strings.TrimSpace(tag), "#"))
	}
	return out
}

// ValidateRejectionReason требует непустую причину отклонения.
func ValidateRejectionReason(reason string) error {
	if strings.TrimSpace(reason) == "" {
		return fmt.Errorf("причина отклонения обязательна")
	}
	return ValidateLength("причина отклонения", strings.TrimSpace(reason), 1, MaxRejectionReasonLength)
}
