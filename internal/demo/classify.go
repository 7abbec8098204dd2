package demo

import (
	"fmt"

	pg_query "github.com/pganalyze/pg_query_go/v6"
)

// QueryType classifies the kind of SQL statement carried by a decoded
// Query or Parse frontend message.
type QueryType int

const (
	QueryUnknown QueryType = iota
	QuerySelect
	QueryInsert
	QueryUpdate
	QueryDelete
	QueryDDL
	QueryUtility // SET, SHOW, BEGIN, COMMIT, ROLLBACK, etc.
)

func (q QueryType) String() string {
	switch q {
	case QuerySelect:
		return "SELECT"
	case QueryInsert:
		return "INSERT"
	case QueryUpdate:
		return "UPDATE"
	case QueryDelete:
		return "DELETE"
	case QueryDDL:
		return "DDL"
	case QueryUtility:
		return "UTILITY"
	default:
		return "UNKNOWN"
	}
}

// TableRef identifies a table referenced by a classified statement.
type TableRef struct {
	Schema string
	Name   string
}

// QualifiedName returns schema.table, or just table if no schema.
func (t TableRef) QualifiedName() string {
	if t.Schema != "" {
		return t.Schema + "." + t.Name
	}
	return t.Name
}

// ClassifiedQuery is the result of classifying one SQL statement
// pulled out of a captured Query or Parse message.
type ClassifiedQuery struct {
	SQL    string
	Type   QueryType
	Tables []TableRef
}

// Classify parses sql and classifies its statement kind and the tables
// it references, for `pgwiredump classify`. Only the first statement
// of a (possibly multi-statement) Query body is classified, matching
// the simple-query protocol's "one Query message, any number of
// semicolon-separated statements" shape.
func Classify(sql string) (*ClassifiedQuery, error) {
	tree, err := pg_query.Parse(sql)
	if err != nil {
		return nil, fmt.Errorf("parse sql: %w", err)
	}

	cq := &ClassifiedQuery{SQL: sql}
	if len(tree.Stmts) == 0 || tree.Stmts[0].Stmt == nil {
		return cq, nil
	}

	classifyStatement(cq, tree.Stmts[0].Stmt)
	return cq, nil
}

func classifyStatement(cq *ClassifiedQuery, stmt *pg_query.Node) {
	switch n := stmt.Node.(type) {
	case *pg_query.Node_SelectStmt:
		cq.Type = QuerySelect
		for _, from := range n.SelectStmt.GetFromClause() {
			extractTableFromNode(cq, from)
		}
	case *pg_query.Node_InsertStmt:
		cq.Type = QueryInsert
		extractRangeVarTable(cq, n.InsertStmt.GetRelation())
	case *pg_query.Node_UpdateStmt:
		cq.Type = QueryUpdate
		extractRangeVarTable(cq, n.UpdateStmt.GetRelation())
	case *pg_query.Node_DeleteStmt:
		cq.Type = QueryDelete
		extractRangeVarTable(cq, n.DeleteStmt.GetRelation())
	case *pg_query.Node_CreateStmt:
		cq.Type = QueryDDL
		extractRangeVarTable(cq, n.CreateStmt.GetRelation())
	case *pg_query.Node_AlterTableStmt:
		cq.Type = QueryDDL
		extractRangeVarTable(cq, n.AlterTableStmt.GetRelation())
	case *pg_query.Node_DropStmt:
		cq.Type = QueryDDL
	case *pg_query.Node_IndexStmt:
		cq.Type = QueryDDL
		extractRangeVarTable(cq, n.IndexStmt.GetRelation())
	case *pg_query.Node_TransactionStmt, *pg_query.Node_VariableSetStmt, *pg_query.Node_VariableShowStmt:
		cq.Type = QueryUtility
	default:
		cq.Type = QueryUtility
	}
}

func extractTableFromNode(cq *ClassifiedQuery, node *pg_query.Node) {
	if node == nil {
		return
	}
	switch n := node.Node.(type) {
	case *pg_query.Node_RangeVar:
		extractRangeVarTable(cq, n.RangeVar)
	case *pg_query.Node_JoinExpr:
		extractTableFromNode(cq, n.JoinExpr.GetLarg())
		extractTableFromNode(cq, n.JoinExpr.GetRarg())
	}
}

func extractRangeVarTable(cq *ClassifiedQuery, rv *pg_query.RangeVar) {
	if rv == nil {
		return
	}
	cq.Tables = append(cq.Tables, TableRef{Schema: rv.GetSchemaname(), Name: rv.GetRelname()})
}
