package graph

import (
	"github.com/vektah/gqlparser/v2"
	"github.com/vektah/gqlparser/v2/ast"
)

const schemaSDL = `
type Temperature {
  id: ID!
  room: String!
  temperature: Float!
  createdAt: String!
}

type TemperatureEvent {
  room: String!
  temperature: Float!
  message: String!
  createdAt: String!
}

type Query {
  # Последние принятые замеры, новые первыми
  temperatures(limit: Int = 50): [Temperature!]!
}

type Subscription {
  # Замеры, принятые после подписки
  temperatureAccepted: TemperatureEvent!
}
`

// Schema разобранная схема GraphQL
func Schema() *ast.Schema {
	return gqlparser.MustLoadSchema(&ast.Source{Name: "schema.graphql", Input: schemaSDL})
}
