/*
 * Copyright 2025 Carver Automation Corporation.
 *
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 *
 *     http://www.apache.org/licenses/LICENSE-2.0
 *
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

package models

const (
	// DesignDocPrefix is the id prefix CouchDB reserves for design documents.
	DesignDocPrefix = "_design/"
	// DefaultViewIndex names the single view stored in each design document.
	DefaultViewIndex = "all"
)

// ViewDefinition is a named map/reduce aggregate installed once into the store.
type ViewDefinition struct {
	Name   string
	Map    string
	Reduce string
}

// DesignID returns the deterministic design document id for the view.
func (v ViewDefinition) DesignID() string {
	return DesignDocPrefix + v.Name
}

// DesignDocument renders the view as the document the store persists.
func (v ViewDefinition) DesignDocument() DesignDocument {
	return DesignDocument{
		ID: v.DesignID(),
		Views: map[string]ViewFunctions{
			DefaultViewIndex: {Map: v.Map, Reduce: v.Reduce},
		},
	}
}

// DesignDocument is the stored form of a ViewDefinition.
type DesignDocument struct {
	ID       string                   `json:"_id"`
	Revision string                   `json:"_rev,omitempty"`
	Views    map[string]ViewFunctions `json:"views"`
}

type ViewFunctions struct {
	Map    string `json:"map"`
	Reduce string `json:"reduce,omitempty"`
}
