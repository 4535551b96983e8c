package httpx

import (
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
)

// PathParam — параметр пути без пробелов по краям; false, если значение пустое.
func PathParam(c *gin.Context, name string) (string, bool) {
	v := strings.TrimSpace(c.Param(name))
	return v, v != ""
}

// AllowedMethods — методы, зарегистрированные для пути (значение заголовка Allow).
// Результат отсортирован и без повторов.
func AllowedMethods(routes gin.RoutesInfo, path string) []string {
	var methods []string
	for _, rt := range routes {
		if matchRoute(rt.Path, path) && !slices.Contains(methods, rt.Method) {
			methods = append(methods, rt.Method)
		}
	}
	slices.Sort(methods)
	return methods
}

// matchRoute — сопоставление пути с шаблоном gin (:param — один сегмент, *rest — хвост).
func matchRoute(pattern, path string) bool {
	ps := strings.Split(strings.Trim(pattern, "/"), "/")
	xs := strings.Split(strings.Trim(path, "/"), "/")

	for i, seg := range ps {
		if strings.HasPrefix(seg, "*") {
			return true
		}
		if i >= len(xs) {
			return false
		}
		if strings.HasPrefix(seg, ":") {
			if xs[i] == "" {
				return false
			}
			continue
		}
		if seg != xs[i] {
			return false
		}
	}
	return len(ps) == len(xs)
}
