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

// Package main provides the dsb data browser.
package main

import (
	"os"

	"github.com/magpierre/fyne-datatable/internal/cli"
	"github.com/magpierre/fyne-datatable/windows"
)

func main() {
	if err := cli.Execute(windows.Run); err != nil {
		os.Exit(1)
	}
}
