package cipher

import (
	"fmt"

	"github.com/danielpatrickdp/vigenere-analyzer/internal/alphabet"
	"github.com/danielpatrickdp/vigenere-analyzer/internal/errkind"
)

// #region keystream

// keystream expands key cyclically to length shifts, starting at position 0.
func keystream(key alphabet.Key, length int) []int {
	stream := make([]int, length)
	for p := range stream {
		stream[p] = int(key[p%len(key)])
	}
	return stream
}

// #endregion keystream

// #region caesar

// Caesar shifts every symbol of seq by k. Use a negative k to decipher.
func Caesar(seq alphabet.Sequence, k int) alphabet.Sequence {
	out := make(alphabet.Sequence, len(seq))
	for i, s := range seq {
		out[i] = s.Shift(k)
	}
	return out
}

// #endregion caesar

// #region encrypt-decrypt

// Encipher adds the repeating key to seq (Vigenère encryption).
func Encipher(seq alphabet.Sequence, key alphabet.Key) (alphabet.Sequence, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("encipher: empty key: %w", errkind.ErrInvalidKeyLength)
	}
	ks := keystream(key, len(seq))
	out := make(alphabet.Sequence, len(seq))
	for p, s := range seq {
		out[p] = s.Shift(ks[p])
	}
	return out, nil
}

// Decipher subtracts the repeating key from seq. Each residue class is
// shifted back as one Caesar column, then the columns are interleaved into
// the original order. The key applies to positions of seq itself, so seq
// must be the same normalized stream the key was recovered from.
func Decipher(seq alphabet.Sequence, key alphabet.Key) (alphabet.Sequence, error) {
	if len(key) == 0 {
		return nil, fmt.Errorf("decipher: empty key: %w", errkind.ErrInvalidKeyLength)
	}
	cols := seq.Split(len(key))
	for i, col := range cols {
		cols[i] = Caesar(col, -int(key[i]))
	}
	plain, err := alphabet.Interleave(cols)
	if err != nil {
		return nil, fmt.Errorf("decipher: %w", err)
	}
	return plain, nil
}

// DecipherText deciphers raw while keeping its spacing, punctuation and case.
// The keystream advances on letters only, matching a key recovered from
// n.Normalize(raw).
func DecipherText(raw string, key alphabet.Key, n alphabet.Normalizer) (string, error) {
	seq, layout := n.Layout(raw)
	plain, err := Decipher(seq, key)
	if err != nil {
		return "", err
	}
	return layout.Reassemble(plain)
}

// EncipherText is the format-preserving inverse of DecipherText.
func EncipherText(raw string, key alphabet.Key, n alphabet.Normalizer) (string, error) {
	seq, layout := n.Layout(raw)
	ct, err := Encipher(seq, key)
	if err != nil {
		return "", err
	}
	return layout.Reassemble(ct)
}

// #endregion encrypt-decrypt
