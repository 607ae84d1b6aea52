package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
	"unicode/utf8"
)

// Допустимые значения полей подписки.
const (
	CurrencyINR = "INR"
	CurrencyUSD = "USD"
	CurrencyEUR = "EUR"
	CurrencyGBP = "GBP"

	FrequencyDaily   = "daily"
	FrequencyWeekly  = "weekly"
	FrequencyMonthly = "monthly"
	FrequencyYearly  = "yearly"

	StatusActive    = "active"
	StatusCancelled = "cancelled"
	StatusExpired   = "expired"
)

var (
	currencies = []string{CurrencyINR, CurrencyUSD, CurrencyEUR, CurrencyGBP}
	categories = []string{"technology", "entertainment", "lifestyle", "finance", "news", "sports", "other"}
	statuses   = []string{StatusActive, StatusCancelled, StatusExpired}

	// renewalPeriods количество дней между продлениями для каждой периодичности.
	renewalPeriods = map[string]int{
		FrequencyDaily:   1,
		FrequencyWeekly:  7,
		FrequencyMonthly: 30,
		FrequencyYearly:  365,
	}
)

// Subscription представляет подписку пользователя на сервис.
type Subscription struct {
	ID            string    `json:"id"`
	Name          string    `json:"name"`
	Price         float64   `json:"price"`
	Currency      string    `json:"currency"`
	Frequency     string    `json:"frequency"`
	Category      string    `json:"category"`
	PaymentMethod string    `json:"paymentMethod"`
	Status        string    `json:"status"`
	StartDate     time.Time `json:"startDate"`
	RenewalDate   time.Time `json:"renewalDate"`
	UserID        string    `json:"user"`
	CreatedAt     time.Time `json:"createdAt"`
	UpdatedAt     time.Time `json:"updatedAt"`
}

// SubscriptionInput данные новой подписки из запроса. Отсутствующее поле
// остаётся nil, типы проверяет декодер, правила полей проверяет ValidateSubscription.
type SubscriptionInput struct {
	Name          *string    `json:"name" validate:"omitempty"`
	Price         *float64   `json:"price" validate:"omitempty"`
	Currency      *string    `json:"currency" validate:"omitempty"`
	Frequency     *string    `json:"frequency" validate:"omitempty"`
	Category      *string    `json:"category" validate:"omitempty"`
	PaymentMethod *string    `json:"paymentMethod" validate:"omitempty"`
	Status        *string    `json:"status" validate:"omitempty"`
	StartDate     *time.Time `json:"startDate" validate:"omitempty"`
	RenewalDate   *time.Time `json:"renewalDate" validate:"omitempty"`
	UserID        string     `json:"-"`
}

// DerivedFields значения, вычисляемые перед сохранением подписки.
type DerivedFields struct {
	RenewalDate time.Time
	Status      string
}

// ApplyDefaults обрезает строковые поля и подставляет значения по умолчанию:
// валюта INR, периодичность monthly, статус active.
func (in *SubscriptionInput) ApplyDefaults() {
	trim := func(p *string) {
		if p != nil {
			*p = strings.TrimSpace(*p)
		}
	}
	trim(in.Name)
	trim(in.PaymentMethod)

	def := func(p **string, v string) {
		if *p == nil {
			*p = &v
		}
	}
	def(&in.Currency, CurrencyINR)
	def(&in.Frequency, FrequencyMonthly)
	def(&in.Status, StatusActive)
}

// DeriveSubscriptionFields вычисляет дату продления и статус.
//
// Без даты продления она равна дате начала плюс 1, 7, 30 или 365 календарных
// дней по периодичности. Если дата продления раньше now, статус становится expired
// независимо от переданного.
func DeriveSubscriptionFields(in SubscriptionInput, now time.Time) DerivedFields {
	var d DerivedFields
	if in.Status != nil {
		d.Status = *in.Status
	}

	switch {
	case in.RenewalDate != nil:
		d.RenewalDate = *in.RenewalDate
	case in.StartDate != nil && in.Frequency != nil:
		if days, ok := renewalPeriods[*in.Frequency]; ok {
			d.RenewalDate = in.StartDate.AddDate(0, 0, days)
		}
	}

	if !d.RenewalDate.IsZero() && d.RenewalDate.Before(now) {
		d.Status = StatusExpired
	}
	return d
}

// Apply записывает вычисленные значения во входные данные.
func (in *SubscriptionInput) Apply(d DerivedFields) {
	if !d.RenewalDate.IsZero() {
		renewal := d.RenewalDate
		in.RenewalDate = &renewal
	}
	if d.Status != "" {
		status := d.Status
		in.Status = &status
	}
}

// ValidateSubscription проверяет правила полей подписки.
// Возвращает *ValidationError с нарушениями в порядке полей или nil.
func ValidateSubscription(in SubscriptionInput, now time.Time) error {
	verr := &ValidationError{}

	switch {
	case in.Name == nil || strings.TrimSpace(*in.Name) == "":
		verr.Add("name", "Subscription name is required!")
	case utf8.RuneCountInString(strings.TrimSpace(*in.Name)) < 2:
		verr.Add("name", "Subscription name must be at least 2 characters!")
	case utf8.RuneCountInString(strings.TrimSpace(*in.Name)) > 100:
		verr.Add("name", "Subscription name can not be more than 100 characters!")
	}

	switch {
	case in.Price == nil:
		verr.Add("price", "Subscription price is required!")
	case *in.Price < 0:
		verr.Add("price", "Price must be greater than 0!")
	}

	if in.Currency != nil && !slices.Contains(currencies, *in.Currency) {
		verr.Add("currency", fmt.Sprintf("`%s` is not a valid currency!", *in.Currency))
	}

	if in.Frequency != nil {
		if _, ok := renewalPeriods[*in.Frequency]; !ok {
			verr.Add("frequency", fmt.Sprintf("`%s` is not a valid frequency!", *in.Frequency))
		}
	}

	switch {
	case in.Category == nil || *in.Category == "":
		verr.Add("category", "Subscription category is required!")
	case !slices.Contains(categories, *in.Category):
		verr.Add("category", fmt.Sprintf("`%s` is not a valid category!", *in.Category))
	}

	if in.PaymentMethod == nil || strings.TrimSpace(*in.PaymentMethod) == "" {
		verr.Add("paymentMethod", "Payment method is required!")
	}

	if in.Status != nil && !slices.Contains(statuses, *in.Status) {
		verr.Add("status", fmt.Sprintf("`%s` is not a valid status!", *in.Status))
	}

	switch {
	case in.StartDate == nil || in.StartDate.IsZero():
		verr.Add("startDate", "Start date is required!")
	case in.StartDate.After(now):
		verr.Add("startDate", "Start date must be in the past!")
	}

	if in.RenewalDate != nil && in.StartDate != nil && !in.RenewalDate.After(*in.StartDate) {
		verr.Add("renewalDate", "Renewal date must be after start date!")
	}

	if in.UserID == "" {
		verr.Add("user", "User is required!")
	}

	return verr.OrNil()
}

// Subscription собирает подписку для записи в хранилище.
// Вызывается после ApplyDefaults, Apply и успешной ValidateSubscription.
func (in SubscriptionInput) Subscription() Subscription {
	s := Subscription{UserID: in.UserID}
	if in.Name != nil {
		s.Name = *in.Name
	}
	if in.Price != nil {
		s.Price = *in.Price
	}
	if in.Currency != nil {
		s.Currency = *in.Currency
	}
	if in.Frequency != nil {
		s.Frequency = *in.Frequency
	}
	if in.Category != nil {
		s.Category = *in.Category
	}
	if in.PaymentMethod != nil {
		s.PaymentMethod = *in.PaymentMethod
	}
	if in.Status != nil {
		s.Status = *in.Status
	}
	if in.StartDate != nil {
		s.StartDate = *in.StartDate
	}
	if in.RenewalDate != nil {
		s.RenewalDate = *in.RenewalDate
	}
	return s
}
