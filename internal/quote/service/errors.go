package service

import "errors"

var (
	// ErrInvalidRecord: строка прайс-листа без обязательного поля или с отрицательной ценой.
	ErrInvalidRecord = errors.New("invalid catalog record")

	// ErrEmptyCart: котировка запрошена для пустой корзины.
	ErrEmptyCart = errors.New("cart is empty")

	// ErrProductNotFound: кода нет в каталоге.
	ErrProductNotFound = errors.New("product not found in catalog")

	// ErrInvalidQuantity: количество должно быть положительным.
	ErrInvalidQuantity = errors.New("quantity must be positive")

	// ErrEntryNotFound: кода нет в корзине или котировке.
	ErrEntryNotFound = errors.New("entry not found")

	// ErrNoQuote: котировка ещё не сформирована.
	ErrNoQuote = errors.New("quote has not been generated")
)
