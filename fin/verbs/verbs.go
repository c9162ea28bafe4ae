// Package verbs extracts the pattern verb, the normalized counterparty
// token, from free-text transaction descriptions.
package verbs

import (
  "regexp"
  "strings"

  "github.com/keep94/appcommon/str_util"
)

// MaxLen is the longest token that can be a verb. Long compound company
// names such as "VERZEKERINGSBANK" stay under this cap; opaque payment
// processor codes do not.
const MaxLen = 25

var (
  kOpaquePattern = regexp.MustCompile(`^[A-Z0-9][A-Z0-9-]*$`)
  kDigitPattern = regexp.MustCompile(`[0-9]`)
  kRefPattern = regexp.MustCompile(`^[A-Z]*[0-9][A-Z0-9]*$`)
  kTrimCutset = ".,;:*'\"()"
)

// Verb is an extracted counterparty token. For compound verbs, Ref holds
// the secondary reference-like token; patterns key on Company alone.
type Verb struct {
  Company string
  Ref string
  Compound bool
}

// A Rule rejects candidate tokens. Each rule tests exactly one property so
// rules can be unit tested in isolation and recombined. Rules see tokens
// already upper-cased with surrounding punctuation trimmed.
type Rule func(token string) bool

// TooShort rejects single character tokens. Two letter acronyms such as
// "NS" pass.
func TooShort(token string) bool {
  return len(token) < 2
}

// TooLong rejects tokens longer than MaxLen characters.
func TooLong(token string) bool {
  return len(token) > MaxLen
}

// AllDigits rejects tokens consisting solely of digits, e.g. stray account
// numbers. Tokens merely starting with a digit ("2Theloo", "123Inkt") pass.
func AllDigits(token string) bool {
  for _, c := range token {
    if c < '0' || c > '9' {
      return false
    }
  }
  return true
}

// NoiseCode rejects the long opaque alphanumeric codes payment processors
// inject into descriptions, e.g. "G-TSRA3I6SK2CWXW77AMV5QPJULEJMB4S5".
// A token is noise if it is at least 10 characters of letters, digits and
// dashes with 4 or more digits interleaved. Real company names with a few
// digits ("123Inkt") stay below the digit threshold or length threshold.
func NoiseCode(token string) bool {
  if len(token) < 10 {
    return false
  }
  if !kOpaquePattern.MatchString(token) {
    return false
  }
  return len(kDigitPattern.FindAllString(token, 5)) >= 4
}

// An Extractor selects the first token of a description that no rule
// rejects. Extractors are immutable and safe for concurrent use.
type Extractor struct {
  rules []Rule
}

// NewExtractor returns an Extractor applying rules in order.
func NewExtractor(rules ...Rule) *Extractor {
  return &Extractor{rules: rules}
}

var (
  kDefault = NewExtractor(TooShort, TooLong, AllDigits, NoiseCode)
)

// Extract runs the default rule pipeline. Same input always yields the
// same output. ok is false when no candidate token remains.
func Extract(desc string) (v Verb, ok bool) {
  return kDefault.Extract(desc)
}

// Extract normalizes whitespace and case, then returns the first token
// that passes every rule. Vowel-less acronyms ("SVB", "KPN") and tokens
// starting with a digit are acceptable verbs; no rule in the default
// pipeline rejects them. The first ref-like token after the company token
// makes the verb compound.
func (e *Extractor) Extract(desc string) (v Verb, ok bool) {
  tokens := tokenize(desc)
  for i, token := range tokens {
    if e.rejected(token) {
      continue
    }
    v.Company = token
    ok = true
    for _, rest := range tokens[i+1:] {
      if refLike(rest) {
        v.Ref = rest
        v.Compound = true
        break
      }
    }
    return
  }
  return
}

func (e *Extractor) rejected(token string) bool {
  for _, rule := range e.rules {
    if rule(token) {
      return true
    }
  }
  return false
}

// refLike reports whether token looks like a payment reference: letters
// and digits with at least one digit, e.g. "REF123". Used only to flag
// compound verbs; compound verbs still key on the company token.
func refLike(token string) bool {
  return len(token) >= 4 && len(token) <= MaxLen &&
      !AllDigits(token) && kRefPattern.MatchString(token)
}

func tokenize(desc string) []string {
  fields := strings.Fields(strings.ToUpper(str_util.Normalize(desc)))
  tokens := make([]string, 0, len(fields))
  for _, f := range fields {
    f = strings.Trim(f, kTrimCutset)
    if f != "" {
      tokens = append(tokens, f)
    }
  }
  return tokens
}
