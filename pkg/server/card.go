// Copyright 2025 Cambio Authors
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

package server

import "github.com/a2aproject/a2a-go/a2a"

// Agent card identity.
const (
	AgentName        = "Currency Agent"
	AgentDescription = "Converts amounts between currencies, looks up exchange rates, and lists supported currencies."
	AgentVersion     = "1.0.0"
	protocolVersion  = "1.0"
)

// BuildAgentCard creates the A2A agent card advertised at the well-known
// path. url is the externally reachable base URL of the server.
func BuildAgentCard(url string) *a2a.AgentCard {
	return &a2a.AgentCard{
		Name:               AgentName,
		Description:        AgentDescription,
		URL:                url,
		Version:            AgentVersion,
		ProtocolVersion:    protocolVersion,
		DefaultInputModes:  []string{"text/plain"},
		DefaultOutputModes: []string{"text/plain"},
		Skills:             agentSkills(),
		Capabilities: a2a.AgentCapabilities{
			Streaming:              false,
			PushNotifications:      false,
			StateTransitionHistory: false,
		},
		PreferredTransport: a2a.TransportProtocolJSONRPC,
		Provider: &a2a.AgentProvider{
			Org: "Cambio",
			URL: "https://github.com/cambiolabs/cambio",
		},
	}
}

func agentSkills() []a2a.AgentSkill {
	return []a2a.AgentSkill{
		{
			ID:          "convert-currency",
			Name:        "Currency Conversion",
			Description: "Convert an amount from one currency to another using current exchange rates.",
			Tags:        []string{"currency", "conversion", "finance", "money"},
			Examples: []string{
				"Convert 100 USD to EUR",
				"How much is 50 GBP in JPY?",
				"Change 1000 INR to USD",
			},
		},
		{
			ID:          "exchange-rate",
			Name:        "Exchange Rate Lookup",
			Description: "Look up the exchange rate between two currencies.",
			Tags:        []string{"currency", "exchange-rate", "finance"},
			Examples: []string{
				"What is the exchange rate from USD to EUR?",
				"EUR to GBP rate",
				"Show me the USD to INR exchange rate",
			},
		},
		{
			ID:          "list-currencies",
			Name:        "List Supported Currencies",
			Description: "List all currencies the agent can convert between.",
			Tags:        []string{"currency", "list", "supported"},
			Examples: []string{
				"What currencies do you support?",
				"List all currencies",
				"Show supported currencies",
			},
		},
	}
}
