package introspection

import (
	"encoding/json"
	"fmt"
	"strings"
)

// introspectionToSDL converts a standard __schema introspection payload
// into SDL text. Adapted from teacher's internal/loader/universal.go
// (same field shape, same type-kind switch); unchanged in substance.
func introspectionToSDL(schemaJSON json.RawMessage) (string, error) {
	var introspected struct {
		QueryType struct {
			Name string `json:"name"`
		} `json:"queryType"`
		MutationType *struct {
			Name string `json:"name"`
		} `json:"mutationType"`
		SubscriptionType *struct {
			Name string `json:"name"`
		} `json:"subscriptionType"`
		Types []struct {
			Kind        string `json:"kind"`
			Name        string `json:"name"`
			Description string `json:"description"`
			Fields      []struct {
				Name string `json:"name"`
				Args []struct {
					Name         string          `json:"name"`
					Type         json.RawMessage `json:"type"`
					DefaultValue string          `json:"defaultValue"`
				} `json:"args"`
				Type              json.RawMessage `json:"type"`
				IsDeprecated      bool            `json:"isDeprecated"`
				DeprecationReason string          `json:"deprecationReason"`
			} `json:"fields"`
			InputFields []struct {
				Name         string          `json:"name"`
				Type         json.RawMessage `json:"type"`
				DefaultValue string          `json:"defaultValue"`
			} `json:"inputFields"`
			Interfaces []struct {
				Name string `json:"name"`
			} `json:"interfaces"`
			EnumValues []struct {
				Name              string `json:"name"`
				IsDeprecated      bool   `json:"isDeprecated"`
				DeprecationReason string `json:"deprecationReason"`
			} `json:"enumValues"`
			PossibleTypes []struct {
				Name string `json:"name"`
			} `json:"possibleTypes"`
		} `json:"types"`
	}

	if err := json.Unmarshal(schemaJSON, &introspected); err != nil {
		return "", fmt.Errorf("parsing introspection JSON: %w", err)
	}

	var sb strings.Builder

	if introspected.QueryType.Name != "Query" ||
		(introspected.MutationType != nil && introspected.MutationType.Name != "Mutation") ||
		(introspected.SubscriptionType != nil && introspected.SubscriptionType.Name != "Subscription") {
		sb.WriteString("schema {\n")
		fmt.Fprintf(&sb, "  query: %s\n", introspected.QueryType.Name)
		if introspected.MutationType != nil {
			fmt.Fprintf(&sb, "  mutation: %s\n", introspected.MutationType.Name)
		}
		if introspected.SubscriptionType != nil {
			fmt.Fprintf(&sb, "  subscription: %s\n", introspected.SubscriptionType.Name)
		}
		sb.WriteString("}\n\n")
	}

	for _, typ := range introspected.Types {
		if strings.HasPrefix(typ.Name, "__") {
			continue
		}
		if typ.Kind == "SCALAR" && isBuiltInScalar(typ.Name) {
			continue
		}

		switch typ.Kind {
		case "OBJECT":
			fmt.Fprintf(&sb, "type %s", typ.Name)
			if len(typ.Interfaces) > 0 {
				sb.WriteString(" implements")
				for i, iface := range typ.Interfaces {
					if i > 0 {
						sb.WriteString(" &")
					}
					sb.WriteString(" " + iface.Name)
				}
			}
			sb.WriteString(" {\n")
			for _, field := range typ.Fields {
				fmt.Fprintf(&sb, "  %s", field.Name)
				if len(field.Args) > 0 {
					sb.WriteString("(")
					for i, arg := range field.Args {
						if i > 0 {
							sb.WriteString(", ")
						}
						fmt.Fprintf(&sb, "%s: %s", arg.Name, formatType(arg.Type))
						if arg.DefaultValue != "" {
							fmt.Fprintf(&sb, " = %s", arg.DefaultValue)
						}
					}
					sb.WriteString(")")
				}
				fmt.Fprintf(&sb, ": %s", formatType(field.Type))
				if field.IsDeprecated {
					fmt.Fprintf(&sb, ` @deprecated(reason: "%s")`, field.DeprecationReason)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("}\n\n")

		case "INTERFACE":
			fmt.Fprintf(&sb, "interface %s {\n", typ.Name)
			for _, field := range typ.Fields {
				fmt.Fprintf(&sb, "  %s: %s\n", field.Name, formatType(field.Type))
			}
			sb.WriteString("}\n\n")

		case "UNION":
			fmt.Fprintf(&sb, "union %s = ", typ.Name)
			for i, member := range typ.PossibleTypes {
				if i > 0 {
					sb.WriteString(" | ")
				}
				sb.WriteString(member.Name)
			}
			sb.WriteString("\n\n")

		case "ENUM":
			fmt.Fprintf(&sb, "enum %s {\n", typ.Name)
			for _, v := range typ.EnumValues {
				fmt.Fprintf(&sb, "  %s", v.Name)
				if v.IsDeprecated {
					fmt.Fprintf(&sb, ` @deprecated(reason: "%s")`, v.DeprecationReason)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("}\n\n")

		case "INPUT_OBJECT":
			fmt.Fprintf(&sb, "input %s {\n", typ.Name)
			for _, field := range typ.InputFields {
				fmt.Fprintf(&sb, "  %s: %s", field.Name, formatType(field.Type))
				if field.DefaultValue != "" {
					fmt.Fprintf(&sb, " = %s", field.DefaultValue)
				}
				sb.WriteString("\n")
			}
			sb.WriteString("}\n\n")

		case "SCALAR":
			fmt.Fprintf(&sb, "scalar %s\n\n", typ.Name)
		}
	}

	return sb.String(), nil
}

func formatType(typeJSON json.RawMessage) string {
	var t struct {
		Kind   string          `json:"kind"`
		Name   string          `json:"name"`
		OfType json.RawMessage `json:"ofType"`
	}
	if err := json.Unmarshal(typeJSON, &t); err != nil {
		return "Unknown"
	}
	switch t.Kind {
	case "NON_NULL":
		return formatType(t.OfType) + "!"
	case "LIST":
		return "[" + formatType(t.OfType) + "]"
	default:
		return t.Name
	}
}

func isBuiltInScalar(name string) bool {
	switch name {
	case "String", "Int", "Float", "Boolean", "ID":
		return true
	default:
		return false
	}
}

const introspectionQuery = `
query IntrospectionQuery {
  __schema {
    queryType { name }
    mutationType { name }
    subscriptionType { name }
    types { ...FullType }
    directives {
      name
      description
      locations
      args { ...InputValue }
    }
  }
}

fragment FullType on __Type {
  kind
  name
  description
  fields(includeDeprecated: true) {
    name
    description
    args { ...InputValue }
    type { ...TypeRef }
    isDeprecated
    deprecationReason
  }
  inputFields { ...InputValue }
  interfaces { ...TypeRef }
  enumValues(includeDeprecated: true) {
    name
    description
    isDeprecated
    deprecationReason
  }
  possibleTypes { ...TypeRef }
}

fragment InputValue on __InputValue {
  name
  description
  type { ...TypeRef }
  defaultValue
}

fragment TypeRef on __Type {
  kind
  name
  ofType {
    kind
    name
    ofType {
      kind
      name
      ofType {
        kind
        name
        ofType {
          kind
          name
          ofType {
            kind
            name
            ofType {
              kind
              name
            }
          }
        }
      }
    }
  }
}
`
