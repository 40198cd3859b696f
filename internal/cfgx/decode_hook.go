// Copyright 2025 Google LLC
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

package cfgx

import (
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// hookFunc mirrors cfg's hookFunc: a mapstructure decode hook that
// type-switches on the destination type and delegates to its
// TextUnmarshaler, so SlotCount and LogSeverity parse the same way
// whether they arrive from a YAML file, an env var, or a flag default.
func hookFunc() mapstructure.DecodeHookFuncType {
	return func(from, to reflect.Type, data interface{}) (interface{}, error) {
		if from.Kind() != reflect.String {
			return data, nil
		}

		s, _ := data.(string)

		switch to {
		case reflect.TypeOf(SlotCount(0)):
			var v SlotCount
			if err := v.UnmarshalText([]byte(s)); err != nil {
				return nil, err
			}
			return v, nil
		case reflect.TypeOf(LogSeverity("")):
			var v LogSeverity
			if err := v.UnmarshalText([]byte(s)); err != nil {
				return nil, err
			}
			return v, nil
		}

		return data, nil
	}
}

// DecodeHook returns the composed decode hook Decode installs on viper, the
// same composition order cfg.DecodeHook uses: text-unmarshaler types
// first, then our custom types, then duration parsing.
func DecodeHook() mapstructure.DecodeHookFunc {
	return mapstructure.ComposeDecodeHookFunc(
		mapstructure.TextUnmarshallerHookFunc(),
		hookFunc(),
		mapstructure.StringToTimeDurationHookFunc(),
	)
}
