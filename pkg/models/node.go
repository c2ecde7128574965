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

import "encoding/json"

// NodeRecordType tags every node document in the store.
const NodeRecordType = "Node"

// NodeRecord is the persisted current state of a single managed node.
// The document id is the node's FQDN, so a store holds at most one record
// per node.
type NodeRecord struct {
	ID          string                 `json:"_id"`
	Revision    string                 `json:"_rev,omitempty"`
	Type        string                 `json:"type"`
	Key         string                 `json:"key"`
	Identity    string                 `json:"identity"`
	AgentList   []string               `json:"agentlist"`
	Facts       map[string]interface{} `json:"facts"`
	Classes     []string               `json:"classes"`
	Collectives []string               `json:"collectives"`
	LastSeen    int64                  `json:"lastseen"`
	Extra       map[string]interface{} `json:"extra,omitempty"`
}

// Report is the body of a registration message sent by a node.
type Report struct {
	Identity    string                 `json:"identity"`
	Facts       map[string]interface{} `json:"facts"`
	AgentList   []string               `json:"agentlist"`
	Classes     []string               `json:"classes"`
	Collectives []string               `json:"collectives"`
}

// FQDN returns facts.fqdn, or an empty string when it is missing or not a string.
func (r *Report) FQDN() string {
	if r == nil || r.Facts == nil {
		return ""
	}

	fqdn, _ := r.Facts["fqdn"].(string)

	return fqdn
}

// Envelope is the MCollective message wrapper. Registration publishers may
// send either the bare report body or the full envelope.
type Envelope struct {
	SenderID string          `json:"senderid"`
	Body     json.RawMessage `json:"body"`
}
