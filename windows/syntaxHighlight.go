// Copyright 2025 Magnus Pierre
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package windows

import (
	"image/color"
	"strings"
	"unicode"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/widget"
)

// tokenKind classifies a run of characters in a computed column line.
type tokenKind int

const (
	tokenPlain    tokenKind = iota
	tokenName               // column name before '='
	tokenKeyword            // if, return, nil, ...
	tokenString             // "...", `...`
	tokenComment            // //, #
	tokenNumber             // 123, 3.14
	tokenOperator           // + - * / == ...
	tokenHelper             // row, num, str and the imported packages
	tokenColumn             // string literal naming a known column
)

// styledCell is a single character with its token kind.
type styledCell struct {
	Rune rune
	Kind tokenKind
}

var syntaxStyles = map[tokenKind]widget.TextGridStyle{
	tokenName: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0x19, G: 0x76, B: 0xd2, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	tokenKeyword: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 255, G: 20, B: 147, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	tokenString: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 180, B: 0, A: 255},
	},
	tokenComment: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 128, G: 128, B: 128, A: 255},
		TextStyle: fyne.TextStyle{Italic: true},
	},
	tokenNumber: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 0, G: 150, B: 255, A: 255},
	},
	tokenOperator: &widget.CustomTextGridStyle{
		FGColor: color.NRGBA{R: 120, G: 120, B: 120, A: 255},
	},
	tokenHelper: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 0, G: 180, B: 180, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
	tokenColumn: &widget.CustomTextGridStyle{
		FGColor:   color.NRGBA{R: 255, G: 140, B: 0, A: 255},
		TextStyle: fyne.TextStyle{Bold: true},
	},
}

var exprKeywords = map[string]bool{
	"if": true, "else": true, "return": true, "for": true, "range": true,
	"switch": true, "case": true, "default": true, "var": true, "func": true,
	"nil": true, "true": true, "false": true,
}

// exprHelpers are the names a computed column body can use besides Go
// builtins.
var exprHelpers = map[string]bool{
	"row": true, "num": true, "str": true,
	"fmt": true, "math": true, "strconv": true, "strings": true, "time": true,
}

// highlightLine tokenizes one "name = expr" line. A string literal whose
// content is in columns is marked as a column reference.
func highlightLine(line string, columns map[string]bool) []styledCell {
	runes := []rune(line)
	cells := make([]styledCell, 0, len(runes))
	emit := func(from, to int, kind tokenKind) {
		for i := from; i < to; i++ {
			cells = append(cells, styledCell{Rune: runes[i], Kind: kind})
		}
	}

	pos := 0
	trimmed := strings.TrimSpace(line)
	if strings.HasPrefix(trimmed, "#") || strings.HasPrefix(trimmed, "//") {
		emit(0, len(runes), tokenComment)
		return cells
	}

	// Leading definition name.
	if eq := strings.IndexRune(line, '='); eq > 0 && !strings.ContainsAny(line[:eq], `"'`+"`") {
		nameEnd := len([]rune(line[:eq]))
		emit(0, nameEnd, tokenName)
		emit(nameEnd, nameEnd+1, tokenOperator)
		pos = nameEnd + 1
	}

	for pos < len(runes) {
		r := runes[pos]
		switch {
		case unicode.IsSpace(r):
			emit(pos, pos+1, tokenPlain)
			pos++
		case r == '/' && pos+1 < len(runes) && runes[pos+1] == '/':
			emit(pos, len(runes), tokenComment)
			pos = len(runes)
		case r == '"' || r == '`':
			end := scanString(runes, pos)
			kind := tokenString
			if end-pos >= 2 && columns[string(runes[pos+1:end-1])] {
				kind = tokenColumn
			}
			emit(pos, end, kind)
			pos = end
		case unicode.IsDigit(r):
			end := scanWhile(runes, pos, func(r rune) bool {
				return unicode.IsDigit(r) || r == '.' || r == 'e' || r == 'E' || r == 'x' || r == 'X'
			})
			emit(pos, end, tokenNumber)
			pos = end
		case unicode.IsLetter(r) || r == '_':
			end := scanWhile(runes, pos, func(r rune) bool {
				return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
			})
			word := string(runes[pos:end])
			kind := tokenPlain
			if exprKeywords[word] {
				kind = tokenKeyword
			} else if exprHelpers[word] {
				kind = tokenHelper
			}
			emit(pos, end, kind)
			pos = end
		case strings.ContainsRune("+-*/%&|^<>=!:;,.()[]{}~", r):
			emit(pos, pos+1, tokenOperator)
			pos++
		default:
			emit(pos, pos+1, tokenPlain)
			pos++
		}
	}
	return cells
}

// scanString returns the index after the literal starting at start. An
// unclosed literal runs to the end of the line.
func scanString(runes []rune, start int) int {
	quote := runes[start]
	pos := start + 1
	for pos < len(runes) {
		if quote == '"' && runes[pos] == '\\' && pos+1 < len(runes) {
			pos += 2
			continue
		}
		if runes[pos] == quote {
			return pos + 1
		}
		pos++
	}
	return pos
}

func scanWhile(runes []rune, start int, ok func(rune) bool) int {
	pos := start
	for pos < len(runes) && ok(runes[pos]) {
		pos++
	}
	return pos
}
