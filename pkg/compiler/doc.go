// Package compiler binds a dom subtree to a reactive data graph.
//
// Mount detaches the root's children into a fragment, walks the fragment
// once and reattaches it, so the live tree is touched twice regardless of
// how many bindings it holds.
//
// During the walk every element's directive attributes are bound:
//
//	<input v-model="person.name">        two-way value binding
//	<button v-on:click="changeText">     method call on event
//	<button @click="changeText">         same, shorthand
//	<span v-text="person.age"></span>     text content binding
//
// and every text node containing {{ path }} placeholders gets one watcher
// per placeholder. By default the text node is split so each placeholder
// updates its own text node (InterpolateSegments); InterpolateWholeNode
// keeps the single node and overwrites it with each reaction.
//
// Elements carrying a binding, and parents of reactive text, receive a
// hydration ID (data-vb) so remote clients can address them.
package compiler
