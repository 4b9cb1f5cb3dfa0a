// Copyright 2020 Grail Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//    http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.
package slice

import (
	"fmt"

	"github.com/grailbio/assembly/pileup"
)

// Element is one read's contribution to a Slice.
type Element struct {
	// ID identifies the read.  It is unique within a Slice.
	ID   string
	Base pileup.Base
	Qual byte
	Dir  pileup.Direction
}

func (e Element) String() string {
	return fmt.Sprintf("%s%s:%s/%d", e.ID, e.Dir, e.Base, e.Qual)
}
