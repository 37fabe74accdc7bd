package unparse_test

import (
	"fmt"
	"log"

	"github.com/aretw0/unparse/pkg/grammar"
	"github.com/aretw0/unparse/pkg/tree"
)

const ifTree = `
type: IfStatement
fields:
  test: {type: Identifier, value: a}
  consequent:
    type: BlockStatement
    children:
      - type: ReturnStatement
        fields:
          argument:
            type: BinaryExpression
            value: "+"
            fields:
              left: {type: Identifier, value: x}
              right: {type: NumericLiteral, value: 1}
`

// Example_grammar renders a YAML tree with the built-in es5 grammar,
// pretty and minified.
func Example_grammar() {
	g, err := grammar.Builtin("es5")
	if err != nil {
		log.Fatal(err)
	}
	root, err := tree.Parse([]byte(ifTree))
	if err != nil {
		log.Fatal(err)
	}
	if err := g.Check(root); err != nil {
		log.Fatal(err)
	}

	for _, minify := range []bool{false, true} {
		u, err := g.Unparser(minify)
		if err != nil {
			log.Fatal(err)
		}
		text, err := u.Render(root)
		if err != nil {
			log.Fatal(err)
		}
		fmt.Println(text)
	}

	// Preview stops the walk once the budget is spent.
	u, _ := g.Unparser(false)
	head, truncated, _ := u.Preview(root, 6)
	fmt.Println(head, truncated)

	// Output:
	// if (a) {
	//     return x + 1;
	// }
	// if(a){return x+1;}
	// if (a) true
}
