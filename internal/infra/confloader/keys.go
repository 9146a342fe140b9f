package confloader

import (
	"reflect"
	"strings"
)

// envKeyIndex walks the koanf tags of target and returns a map from the
// underscore-joined form of every leaf key to its dotted form.
func envKeyIndex(target any) map[string]string {
	index := make(map[string]string)
	t := reflect.TypeOf(target)
	if t == nil {
		return index
	}
	collectKeys(t, "", index)
	return index
}

func collectKeys(t reflect.Type, prefix string, index map[string]string) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return
	}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() {
			continue
		}
		tag := strings.Split(f.Tag.Get("koanf"), ",")[0]
		if tag == "" || tag == "-" {
			continue
		}
		key := tag
		if prefix != "" {
			key = prefix + "." + tag
		}

		ft := f.Type
		for ft.Kind() == reflect.Pointer {
			ft = ft.Elem()
		}
		// time.Duration and friends are leaves; only plain structs nest.
		if ft.Kind() == reflect.Struct && ft.PkgPath() != "time" {
			collectKeys(ft, key, index)
			continue
		}
		index[strings.ReplaceAll(key, ".", "_")] = key
	}
}
