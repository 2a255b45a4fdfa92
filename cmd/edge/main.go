// Command edge is the Lambda@Edge origin-request function.
package main

import (
	"context"
	"log"

	"github.com/aws/aws-lambda-go/lambda"

	"github.com/sundayezeilo/georedirect/internal/app"
)

func main() {
	application, err := app.NewEdge(context.Background())
	if err != nil {
		log.Fatal(err)
	}

	lambda.Start(application.Edge.Handle)
}
