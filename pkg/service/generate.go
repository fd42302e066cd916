package service

import (
	"context"
	"crypto/rand"
	"fmt"
	"math/big"
	"regexp"
)

const (
	defaultCodeLength  = 6 // длина сгенерированного кода по умолчанию
	defaultMaxAttempts = 5 // число попыток генерации при коллизиях
)

// алфавит без визуально похожих символов (исключены 0/O, 1/l/I)
const codeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ" +
	"abcdefghijkmnopqrstuvwxyz" +
	"23456789"

// кастомный алиас: 3-50 символов, буквы/цифры/дефис/подчёркивание
var customAliasPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,50}$`)

// NewRandomCode возвращает случайный код указанной длины из безопасного алфавита
func NewRandomCode(size int) (string, error) {

	if size == 0 {
		size = defaultCodeLength
	}

	b := make([]byte, size)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		n, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("ошибка генератора случайных чисел в NewRandomCode: %w", err)
		}
		b[i] = codeAlphabet[n.Int64()]
	}

	return string(b), nil
}

// generateUniqueCode генерирует код и проверяет его уникальность в хранилище,
// при исчерпании попыток возвращает ErrCodeSpaceExhausted — это сигнал о том,
// что длина кода мала для текущего числа ссылок, молча глотать его нельзя
func (s *Service) generateUniqueCode(ctx context.Context) (string, error) {

	for attempt := 0; attempt < s.codeAttempts; attempt++ {

		code, err := NewRandomCode(s.codeLength)
		if err != nil {
			return "", err
		}

		exists, err := s.link.ShortCodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}

	return "", fmt.Errorf("%w (длина %d, попыток %d)", ErrCodeSpaceExhausted, s.codeLength, s.codeAttempts)
}
