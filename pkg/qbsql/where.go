package qbsql

import (
	"errors"
	"regexp"
	"strconv"
	"strings"

	"github.com/queuebridge/quickbase-go/pkg/qbclient"
)

// quotedTokenRe находит квотированные токены WHERE-выражения.
// Платформа принимает фильтры вида {fid.OP.'value'}, поэтому в исходном
// выражении квотированными бывают и имена полей, и строковые значения.
var quotedTokenRe = regexp.MustCompile(`['"]([^'"]+)['"]`)

// translateWhere подставляет fid вместо квотированных имён полей.
//
// Токен, для которого resolve вернул ErrNotFound, считается строковым
// литералом значения и остаётся в выражении без изменений. Любая другая
// ошибка резолвера прерывает трансляцию.
func translateWhere(where string, resolve func(string) (int, error)) (string, error) {
	if where == "" {
		return "", nil
	}

	out := where
	seen := make(map[string]bool)
	for _, m := range quotedTokenRe.FindAllStringSubmatch(where, -1) {
		token := m[1]
		if seen[token] {
			continue
		}
		seen[token] = true

		fid, err := resolve(token)
		if err != nil {
			if errors.Is(err, qbclient.ErrNotFound) {
				continue
			}
			return "", err
		}

		id := strconv.Itoa(fid)
		out = strings.ReplaceAll(out, "'"+token+"'", id)
		out = strings.ReplaceAll(out, `"`+token+`"`, id)
	}
	return out, nil
}
